package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/phobologic/lexscope/internal/mcptool"
)

func newMCPCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the analyzer as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := g.setup()
			if err != nil {
				return err
			}

			engine, closeEngine, err := newEngine(cfg, logger)
			if err != nil {
				return err
			}
			defer closeEngine()

			stdio := server.NewStdioServer(mcptool.NewServer(engine, version))
			stdio.SetErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))

			logger.Debug("mcp server listening on stdio")
			err = stdio.Listen(cmd.Context(), cmd.InOrStdin(), g.stdout)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
