// lexscope runs heuristic lexical analysis over C++ and Java source.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/phobologic/lexscope/internal/analyzer"
	"github.com/phobologic/lexscope/internal/cache"
	"github.com/phobologic/lexscope/internal/config"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	configPath string
	verbose    bool
	stdout     io.Writer
	stderr     io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(stdout, stderr)
	if args == nil {
		args = []string{} // cobra falls back to os.Args on nil
	}
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globals{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "lexscope",
		Short: "Heuristic lexical analysis for C++ and Java source",
		Long: `lexscope classifies the keywords, constants, identifiers and operators of
C++ and Java source, builds a symbol table, estimates complexity and flags
unbalanced brackets and likely missing semicolons.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate("lexscope {{.Version}}\n")

	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default ./"+config.FileName+")")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "debug logging")
	root.Flags().BoolP("version", "V", false, "show version and exit")

	root.AddCommand(
		newAnalyzeCmd(g),
		newScanCmd(g),
		newServeCmd(g),
		newMCPCmd(g),
		newWatchCmd(g),
		newInitCmd(g),
	)
	return root
}

// setup loads configuration and builds the logger.
func (g *globals) setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(".", g.configPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, cfg.NewLogger(g.stderr, g.verbose), nil
}

// newEngine builds the analyzer, wrapped in a result cache unless
// cache.capacity is zero. The returned func releases the cache.
func newEngine(cfg *config.Config, logger *slog.Logger) (analyzer.Engine, func(), error) {
	base := analyzer.New(analyzer.Options{
		TreeSitter: cfg.Diagnostics.TreeSitter,
		Logger:     logger,
	})
	if cfg.Cache.Capacity == 0 {
		return base, func() {}, nil
	}

	cached, err := cache.New(base, cfg.Cache.Capacity)
	if err != nil {
		return nil, nil, err
	}
	return cached, func() {
		hits, misses := cached.Stats()
		logger.Debug("result cache", "hits", hits, "misses", misses)
		cached.Close()
	}, nil
}
