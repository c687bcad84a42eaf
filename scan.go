package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/lexscope/internal/analyzer"
	"github.com/phobologic/lexscope/internal/discover"
	"github.com/phobologic/lexscope/internal/model"
	"github.com/phobologic/lexscope/internal/ranking"
	"github.com/phobologic/lexscope/internal/toon"
)

// scanReport is the JSON shape of a scan.
type scanReport struct {
	Root  string             `json:"root"`
	Files []model.FileReport `json:"files"`
}

func newScanCmd(g *globals) *cobra.Command {
	var (
		out          outputFlags
		maxFiles     int
		langs        string
		excludes     []string
		maxFileSize  int
		workers      int
		symbolFilter string
		fileFilter   string
	)

	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Analyze every C++ and Java file under a directory",
		Long: `Discover C++ and Java files under dir (default "."), analyze them
concurrently and report them ordered by cyclomatic complexity, highest first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.setup()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-files") {
				cfg.Scan.MaxFiles = maxFiles
			}
			if cmd.Flags().Changed("max-file-size") {
				cfg.Scan.MaxFileSize = maxFileSize
			}
			if cmd.Flags().Changed("workers") {
				cfg.Scan.Workers = workers
			}
			cfg.Scan.Exclude = append(cfg.Scan.Exclude, excludes...)
			if err := out.apply(cmd, cfg); err != nil {
				return err
			}

			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			root, err = filepath.Abs(root)
			if err != nil {
				return fmt.Errorf("resolving root: %w", err)
			}
			info, err := os.Stat(root)
			if err != nil {
				return fmt.Errorf("root path: %w", err)
			}
			if !info.IsDir() {
				return fmt.Errorf("%s: not a directory", root)
			}

			langFilter, err := parseLangs(langs)
			if err != nil {
				return err
			}

			files, err := discover.Files(root, langFilter, cfg.Scan.Exclude)
			if err != nil {
				return fmt.Errorf("discovering files: %w", err)
			}
			if len(files) == 0 {
				return fmt.Errorf("no source files found")
			}

			files = filterBySize(root, files, cfg.Scan.MaxFileSize, g.stderr)
			if len(files) == 0 {
				return fmt.Errorf("no source files found (all exceeded size limit)")
			}

			engine, closeEngine, err := newEngine(cfg, logger)
			if err != nil {
				return err
			}
			defer closeEngine()

			logger.Debug("scanning", "root", root, "files", len(files), "workers", cfg.Scan.Workers)
			reports, err := analyzeFiles(cmd.Context(), root, files, engine, cfg.Scan.Workers, g.stderr)
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				return fmt.Errorf("no files could be analyzed")
			}

			if fileFilter != "" {
				reports = ranking.FilterByFile(reports, fileFilter)
			}
			if symbolFilter != "" {
				reports = ranking.FilterBySymbol(reports, symbolFilter)
			}
			ranking.ByComplexity(reports)
			reports = ranking.Top(reports, cfg.Scan.MaxFiles)
			if reports == nil {
				reports = []model.FileReport{}
			}

			if cfg.Output.Format == "toon" {
				_, _ = fmt.Fprintln(g.stdout, toon.EncodeReport(filepath.Base(root), reports))
				return nil
			}
			return model.WriteJSON(g.stdout, scanReport{Root: filepath.Base(root), Files: reports}, cfg.Output.Pretty)
		},
	}

	out.register(cmd)
	cmd.Flags().IntVarP(&maxFiles, "max-files", "n", 0, "maximum number of files to report")
	cmd.Flags().StringVarP(&langs, "langs", "l", "", "comma-separated languages to include")
	cmd.Flags().StringSliceVar(&excludes, "exclude", nil, "doublestar glob of paths to skip (repeatable)")
	cmd.Flags().IntVar(&maxFileSize, "max-file-size", 0, "skip files larger than this many bytes")
	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "concurrent analyses (0 = GOMAXPROCS)")
	cmd.Flags().StringVarP(&symbolFilter, "symbol", "s", "", "only files with a symbol containing this text")
	cmd.Flags().StringVar(&fileFilter, "file", "", "only files whose path contains this text")
	return cmd
}

func parseLangs(langs string) ([]model.Language, error) {
	if langs == "" {
		return nil, nil
	}
	var out []model.Language
	for _, name := range strings.Split(langs, ",") {
		l, err := model.ParseLanguage(name)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func filterBySize(root string, files []discover.FileEntry, maxSize int, stderr io.Writer) []discover.FileEntry {
	var kept []discover.FileEntry
	for _, f := range files {
		fi, err := os.Stat(filepath.Join(root, f.Path))
		if err != nil {
			kept = append(kept, f) // the read will report it
			continue
		}
		if fi.Size() > int64(maxSize) {
			_, _ = fmt.Fprintf(stderr, "Warning: %s: skipped (>%d bytes)\n", f.Path, maxSize)
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// analyzeFiles analyzes files with at most workers in flight and returns
// the reports in input order. Unreadable and non-UTF-8 files are skipped
// with a warning.
func analyzeFiles(ctx context.Context, root string, files []discover.FileEntry, engine analyzer.Engine, workers int, stderr io.Writer) ([]model.FileReport, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	indexed := make([]*model.FileReport, len(files))
	var stderrMu sync.Mutex
	warn := func(format string, args ...any) {
		stderrMu.Lock()
		defer stderrMu.Unlock()
		_, _ = fmt.Fprintf(stderr, format, args...)
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, f := range files {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(filepath.Join(root, f.Path))
			if err != nil {
				warn("Warning: failed to read %s: %v\n", f.Path, err)
				return nil
			}
			unit, err := model.NewSourceUnit(data, f.Language)
			if err != nil {
				warn("Warning: %s: %v\n", f.Path, err)
				return nil
			}
			indexed[i] = &model.FileReport{
				Path:     f.Path,
				Language: f.Language,
				Result:   engine.Analyze(unit),
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("scan interrupted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan interrupted: %w", err)
	}

	reports := make([]model.FileReport, 0, len(files))
	for _, r := range indexed {
		if r != nil {
			reports = append(reports, *r)
		}
	}
	return reports, nil
}
