package lang

import (
	"github.com/smacker/go-tree-sitter/java"

	"github.com/phobologic/lexscope/internal/model"
)

func init() {
	Languages[model.Java] = &Language{
		Name:       model.Java,
		Extensions: []string{".java"},
		lang:       java.GetLanguage(),
	}
}
