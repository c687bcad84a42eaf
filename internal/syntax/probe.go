package syntax

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/lexscope/internal/lang"
	"github.com/phobologic/lexscope/internal/model"
)

// Probe parses src with the tree-sitter grammar of language and reports
// every error and missing node the parser recovered from. It is a second
// opinion next to the heuristic checks; it never changes token results.
func Probe(ctx context.Context, language model.Language, src string) ([]string, error) {
	l, ok := lang.Languages[language]
	if !ok {
		return nil, fmt.Errorf("%w %q", model.ErrUnsupportedLanguage, language)
	}
	if src == "" {
		return nil, nil
	}

	parser := l.NewParser()
	defer parser.Close()

	tree, err := parser.ParseCtx(ctx, nil, []byte(src))
	if err != nil {
		return nil, fmt.Errorf("parsing %s source: %w", language, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil, nil
	}

	var diags []string
	collectErrors(root, &diags)
	return diags, nil
}

func collectErrors(node *sitter.Node, diags *[]string) {
	if node == nil || !node.HasError() && !node.IsMissing() {
		return
	}

	p := node.StartPoint()
	line, col := int(p.Row)+1, int(p.Column)+1
	switch {
	case node.IsMissing():
		*diags = append(*diags, fmt.Sprintf("Missing '%s' at line %d, column %d", node.Type(), line, col))
		return
	case node.Type() == "ERROR":
		*diags = append(*diags, fmt.Sprintf("Parse error at line %d, column %d", line, col))
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		collectErrors(node.Child(i), diags)
	}
}
