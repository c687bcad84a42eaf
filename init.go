package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phobologic/lexscope/internal/config"
)

const (
	sentinelStart = "# lexscope:start"
	sentinelEnd   = "# lexscope:end"
)

// newInitCmd implements `lexscope init`, which writes (or updates) the
// default settings block in a config file.
func newInitCmd(g *globals) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write default settings to " + config.FileName,
		Long: `Write lexscope's default settings to a config file. The settings are wrapped
in sentinel comments so they can be updated in place on subsequent runs
without touching surrounding content. Creates the file if it does not exist.

path defaults to ./` + config.FileName + `.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// --dry-run with no path: just print the default section itself.
			if dryRun && len(args) == 0 {
				section, err := generateSection(config.Default())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(g.stdout, section)
				return nil
			}

			path := config.FileName
			if len(args) > 0 {
				path = args[0]
			}

			// Current settings survive a rewrite; keys added since the file
			// was written appear with their defaults.
			current, err := config.ReadFile(path)
			if err != nil {
				return err
			}
			section, err := generateSection(current)
			if err != nil {
				return err
			}

			existing, _ := os.ReadFile(path)
			updated := applySection(stripSettings(string(existing)), section)

			if dryRun {
				_, _ = fmt.Fprint(g.stdout, updated)
				return nil
			}

			if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}

			_, _ = fmt.Fprintf(g.stderr, "wrote lexscope settings to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying the file")
	return cmd
}

// generateSection returns cfg rendered as a sentinel-wrapped YAML block.
func generateSection(cfg *config.Config) (string, error) {
	body, err := config.Marshal(cfg)
	if err != nil {
		return "", err
	}
	header := `# Managed by "lexscope init", which rewrites this block from the current
# values. LEXSCOPE_<SECTION>_<KEY> environment variables take precedence.
`
	return sentinelStart + "\n" + header + strings.TrimRight(string(body), "\n") + "\n" + sentinelEnd, nil
}

// stripSettings removes top-level settings keys and their indented bodies
// from content. Their values are already carried into the managed block by
// config.ReadFile, and leaving them would repeat keys in the file. Comments,
// blank lines and unrelated keys are kept.
func stripSettings(content string) string {
	lines := strings.SplitAfter(content, "\n")
	out := make([]string, 0, len(lines))
	inSetting := false
	for _, line := range lines {
		trimmed := strings.TrimRight(line, "\r\n")
		if inSetting && (strings.HasPrefix(trimmed, " ") || strings.HasPrefix(trimmed, "\t") || strings.HasPrefix(trimmed, "- ")) {
			continue
		}
		inSetting = false
		name, _, ok := strings.Cut(trimmed, ":")
		if ok && name == strings.TrimSpace(name) && slices.Contains(settingsKeys, name) {
			inSetting = true
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "")
}

// settingsKeys are the top-level keys config.Marshal writes.
var settingsKeys = []string{"output", "scan", "server", "cache", "diagnostics", "log"}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not. It is a pure function for easy testing.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if len(content) == 0 {
		return section + "\n"
	}
	return content + "\n" + section + "\n"
}
