package main

import (
	"github.com/spf13/cobra"

	"github.com/phobologic/lexscope/internal/server"
)

func newServeCmd(g *globals) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analyzer over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := g.setup()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			engine, closeEngine, err := newEngine(cfg, logger)
			if err != nil {
				return err
			}
			defer closeEngine()

			srv := server.New(engine, server.Options{
				MaxUploadBytes: cfg.Server.MaxUploadBytes,
				Logger:         logger,
			})
			return server.ListenAndServe(cmd.Context(), cfg.Server.Addr, srv.Handler(), logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr)")
	return cmd
}
