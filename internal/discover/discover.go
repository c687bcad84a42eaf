// Package discover finds analyzable C++ and Java source files in a tree.
package discover

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/phobologic/lexscope/internal/lang"
	"github.com/phobologic/lexscope/internal/model"
)

// FileEntry represents a discovered source file.
type FileEntry struct {
	Path     string // Relative to root, slash-separated
	Language model.Language
}

var skipDirs = map[string]struct{}{
	"node_modules": {},
	".git":         {},
	".hg":          {},
	".svn":         {},
	"build":        {},
	"dist":         {},
	"out":          {},
	"target":       {},
	".gradle":      {},
	".idea":        {},
	"third_party":  {},
	"vendor":       {},
}

// Files discovers source files under root. If languages is non-empty only
// those languages are returned. excludes are doublestar patterns matched
// against the slash-separated relative path.
func Files(root string, languages []model.Language, excludes []string) ([]FileEntry, error) {
	for _, pattern := range excludes {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	langSet := make(map[model.Language]struct{}, len(languages))
	for _, l := range languages {
		langSet[l] = struct{}{}
	}
	gitFiles := gitLsFiles(root)
	var gi *ignore.GitIgnore
	if gitFiles == nil {
		gi = loadGitignore(root)
	}

	var results []FileEntry

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip errors
		}

		name := d.Name()

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "cmake-build-") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}

		// Skip symlinks
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if gitFiles != nil {
			if _, ok := gitFiles[rel]; !ok {
				return nil
			}
		} else if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		if excluded(rel, excludes) {
			return nil
		}

		langName := lang.ForExtension(filepath.Ext(name))
		if langName == "" {
			return nil
		}

		if len(langSet) > 0 {
			if _, ok := langSet[langName]; !ok {
				return nil
			}
		}

		results = append(results, FileEntry{Path: rel, Language: langName})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	return results, nil
}

func excluded(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func gitLsFiles(root string) map[string]struct{} {
	gitDir := filepath.Join(root, ".git")
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil
	}

	files := make(map[string]struct{})
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		if line != "" {
			files[line] = struct{}{}
		}
	}
	return files
}

func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}
