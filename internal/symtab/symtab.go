// Package symtab builds the deduplicated symbol table of a classified source.
package symtab

import (
	"strings"

	"github.com/phobologic/lexscope/internal/model"
)

// Build inserts keywords, then constants, then identifiers into one table.
// A lexeme already present keeps its first category. Every count is the
// literal substring count of the lexeme in src.
func Build(src string, keywords, constants, identifiers []string) []model.SymbolEntry {
	table := make([]model.SymbolEntry, 0, len(keywords)+len(constants)+len(identifiers))
	seen := make(map[string]struct{}, cap(table))

	add := func(token string, typ model.TokenCategory) {
		if _, ok := seen[token]; ok {
			return
		}
		seen[token] = struct{}{}
		table = append(table, model.SymbolEntry{Token: token, Type: typ, Count: strings.Count(src, token)})
	}

	for _, k := range keywords {
		add(k, model.Keyword)
	}
	for _, c := range constants {
		add(c, ConstantType(c))
	}
	for _, id := range identifiers {
		add(id, model.Identifier)
	}
	return table
}

// ConstantType labels a constant lexeme for the table. Floats and booleans
// are reported as integer constants.
func ConstantType(lexeme string) model.TokenCategory {
	switch {
	case strings.HasPrefix(lexeme, `"`):
		return model.StringConstant
	case strings.HasPrefix(lexeme, "'"):
		return model.CharacterConstant
	default:
		return model.IntegerConstant
	}
}
