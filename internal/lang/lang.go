// Package lang provides a language registry mapping file extensions to
// C-family dialects and their tree-sitter grammars.
package lang

import (
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/lexscope/internal/model"
)

// Language holds the registry entry for a supported dialect.
type Language struct {
	Name       model.Language
	Extensions []string
	lang       *sitter.Language
}

// GetLanguage returns the tree-sitter Language pointer.
func (l *Language) GetLanguage() *sitter.Language {
	return l.lang
}

// NewParser creates a fresh tree-sitter parser for this language.
// Each goroutine must use its own parser (not thread-safe).
func (l *Language) NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(l.lang)
	return p
}

// Languages maps language names to their configuration.
// Populated by init() functions in per-language files.
var Languages = map[model.Language]*Language{}

// extensionMap is built lazily after all init() functions have run.
var extensionMap map[string]model.Language
var extensionOnce sync.Once

func getExtensionMap() map[string]model.Language {
	extensionOnce.Do(func() {
		extensionMap = make(map[string]model.Language)
		for _, l := range Languages {
			for _, ext := range l.Extensions {
				extensionMap[ext] = l.Name
			}
		}
	})
	return extensionMap
}

// ForExtension returns the language for a file extension, or "" if
// unsupported. Matching ignores case.
func ForExtension(ext string) model.Language {
	return getExtensionMap()[strings.ToLower(ext)]
}
