package lexer

// CppKeywords is the C++-dialect keyword vocabulary. It deliberately includes
// common library type names (string, vector, map, ...) and preprocessor words.
var CppKeywords = []string{
	"auto", "break", "case", "catch", "class", "const", "continue", "default",
	"delete", "do", "else", "enum", "extern", "for", "friend", "goto", "if",
	"inline", "int", "long", "namespace", "new", "operator", "private", "protected",
	"public", "register", "return", "short", "signed", "sizeof", "static",
	"struct", "switch", "template", "this", "throw", "try", "typedef", "union",
	"unsigned", "virtual", "void", "volatile", "while", "bool", "char", "double",
	"float", "string", "vector", "map", "set", "list", "include", "using",
}

// JavaKeywords is the Java-dialect keyword vocabulary, literals included.
var JavaKeywords = []string{
	"abstract", "assert", "boolean", "break", "byte", "case", "catch", "char",
	"class", "const", "continue", "default", "do", "double", "else", "enum",
	"extends", "final", "finally", "float", "for", "goto", "if", "implements",
	"import", "instanceof", "int", "interface", "long", "native", "new", "package",
	"private", "protected", "public", "return", "short", "static", "strictfp",
	"super", "switch", "synchronized", "this", "throw", "throws", "transient",
	"try", "void", "volatile", "while", "true", "false", "null",
}

// OperatorCatalogue lists operators in reporting order. Shorter entries are
// substrings of longer ones and are counted independently.
var OperatorCatalogue = []string{
	"+", "-", "*", "/", "%",
	"=", "==", "!=", "<", ">", "<=", ">=",
	"&&", "||", "!",
	"&", "|", "^", "~", "<<", ">>",
	"++", "--",
	"+=", "-=", "*=", "/=", "%=",
	"?", ":",
	"->", ".", "::",
	"(", ")", "[", "]", "{", "}",
	",", ";",
}

// keywordCatalogue is CppKeywords followed by the Java-only entries.
var keywordCatalogue = dedupe(append(append([]string{}, CppKeywords...), JavaKeywords...))

// KeywordCatalogue returns a copy of the combined keyword vocabulary, both
// dialects, in matching order.
func KeywordCatalogue() []string {
	return append([]string(nil), keywordCatalogue...)
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
