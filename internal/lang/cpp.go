package lang

import (
	"github.com/smacker/go-tree-sitter/cpp"

	"github.com/phobologic/lexscope/internal/model"
)

func init() {
	Languages[model.Cpp] = &Language{
		Name:       model.Cpp,
		Extensions: []string{".cpp", ".cc", ".cxx", ".c++", ".hpp", ".hh", ".hxx", ".h"},
		lang:       cpp.GetLanguage(),
	}
}
