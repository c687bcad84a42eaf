package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/phobologic/lexscope/internal/analyzer"
	"github.com/phobologic/lexscope/internal/model"
)

const watchDebounce = 100 * time.Millisecond

func newWatchCmd(g *globals) *cobra.Command {
	var (
		langName string
		advanced bool
	)

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-analyze a file every time it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.setup()
			if err != nil {
				return err
			}
			path := args[0]
			if path == "-" {
				return fmt.Errorf("watch needs a file, not stdin")
			}
			language, err := resolveLanguage(path, langName)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("watch: %w", err)
			}

			engine, closeEngine, err := newEngine(cfg, logger)
			if err != nil {
				return err
			}
			defer closeEngine()

			w := &watcher{
				path:     path,
				language: language,
				advanced: advanced,
				engine:   engine,
				out:      g.stdout,
				logger:   logger,
			}
			return w.run(cmd.Context(), nil)
		},
	}

	cmd.Flags().StringVarP(&langName, "lang", "l", "", "source language: cpp or java")
	cmd.Flags().BoolVarP(&advanced, "advanced", "a", false, "print diagnostics under each summary")
	return cmd
}

// watcher prints a summary of path on start and after every change.
type watcher struct {
	path     string
	language model.Language
	advanced bool
	engine   analyzer.Engine
	out      io.Writer
	logger   *slog.Logger
}

// run blocks until ctx is done. ready, if non-nil, is closed once the
// file is being watched.
func (w *watcher) run(ctx context.Context, ready chan<- struct{}) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsw.Close()

	// Editors often replace files by rename, so watch the directory.
	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	target := filepath.Clean(w.path)

	w.report(ctx)
	if ready != nil {
		close(ready)
	}

	var debounce *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			w.report(ctx)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *watcher) report(ctx context.Context) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		w.logger.Warn("reading watched file", "file", w.path, "error", err)
		return
	}
	unit, err := model.NewSourceUnit(data, w.language)
	if err != nil {
		w.logger.Warn("skipping change", "file", w.path, "error", err)
		return
	}

	if !w.advanced {
		_, _ = fmt.Fprintln(w.out, summaryLine(w.path, w.engine.Analyze(unit)))
		return
	}
	res := w.engine.AnalyzeAdvanced(ctx, unit)
	var b strings.Builder
	fmt.Fprintf(&b, "%s diagnostics=%d", summaryLine(w.path, &res.AnalysisResult), len(res.SyntaxErrors))
	for _, d := range res.SyntaxErrors {
		fmt.Fprintf(&b, "\n  %s", d)
	}
	_, _ = fmt.Fprintln(w.out, b.String())
}

func summaryLine(name string, res *model.AnalysisResult) string {
	st, cm := res.Statistics, res.ComplexityMetrics
	return fmt.Sprintf("%s: lines=%d tokens=%d keywords=%d constants=%d identifiers=%d operators=%d complexity=%d functions=%d comments=%.1f%%",
		name, st.TotalLines, st.TotalTokens, st.KeywordsCount, st.ConstantsCount, st.IdentifiersCount,
		st.OperatorsCount, cm.CyclomaticComplexity, cm.FunctionCount, float64(cm.CommentDensity))
}
