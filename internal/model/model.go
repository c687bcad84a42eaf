// Package model defines core data structures for lexscope.
package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNotText reports input bytes that are not valid UTF-8.
	ErrNotText = errors.New("input is not valid UTF-8 text")
	// ErrUnsupportedLanguage reports a language tag other than cpp or java.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// Language is the declared dialect of a source unit.
type Language string

const (
	Cpp  Language = "cpp"
	Java Language = "java"
)

// Languages lists every supported language in display order.
var Languages = []Language{Cpp, Java}

// ParseLanguage validates a language tag.
func ParseLanguage(s string) (Language, error) {
	switch l := Language(strings.ToLower(strings.TrimSpace(s))); l {
	case Cpp, Java:
		return l, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnsupportedLanguage, s)
}

// SourceUnit is the immutable input of one analysis.
type SourceUnit struct {
	Text     string
	Language Language
}

// NewSourceUnit decodes raw bytes into a SourceUnit, rejecting non-UTF-8 input.
func NewSourceUnit(data []byte, lang Language) (SourceUnit, error) {
	if !utf8.Valid(data) {
		return SourceUnit{}, ErrNotText
	}
	return SourceUnit{Text: string(data), Language: lang}, nil
}

// TokenCategory is the classification bucket of a lexeme.
type TokenCategory string

const (
	Keyword           TokenCategory = "Keyword"
	Identifier        TokenCategory = "Identifier"
	IntegerConstant   TokenCategory = "Integer Constant"
	FloatConstant     TokenCategory = "Float Constant"
	StringConstant    TokenCategory = "String Constant"
	CharacterConstant TokenCategory = "Character Constant"
	BooleanConstant   TokenCategory = "Boolean Constant"
	Operator          TokenCategory = "Operator"
)

// ClassifiedToken is a lexeme with its category and raw occurrence count.
type ClassifiedToken struct {
	Lexeme   string
	Category TokenCategory
	Count    int
}

// SymbolEntry is one row of the symbol table.
type SymbolEntry struct {
	Token string        `json:"token"`
	Type  TokenCategory `json:"type"`
	Count int           `json:"count"`
}

// Statistics summarises the token counts of a result.
type Statistics struct {
	TotalLines       int `json:"total_lines"`
	TotalTokens      int `json:"total_tokens"`
	KeywordsCount    int `json:"keywords_count"`
	ConstantsCount   int `json:"constants_count"`
	IdentifiersCount int `json:"identifiers_count"`
	OperatorsCount   int `json:"operators_count"`
}

// Percent is a float that always serialises with a decimal point.
type Percent float64

// MarshalJSON renders integral values as "N.0".
func (p Percent) MarshalJSON() ([]byte, error) {
	s := strconv.FormatFloat(float64(p), 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return []byte(s), nil
}

// ComplexityMetrics holds the coarse complexity approximations.
type ComplexityMetrics struct {
	CyclomaticComplexity int     `json:"cyclomatic_complexity"`
	FunctionCount        int     `json:"function_count"`
	CommentDensity       Percent `json:"comment_density"`
}

// TokenDistribution is the per-category count series for charts.
type TokenDistribution struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
	Colors []string `json:"colors"`
}

// OperatorCount is one entry of an OperatorFrequency.
type OperatorCount struct {
	Operator string
	Count    int
}

// OperatorFrequency maps operator lexemes to counts, keeping insertion order.
type OperatorFrequency []OperatorCount

// Add accumulates n onto op, appending it if it is new.
func (f OperatorFrequency) Add(op string, n int) OperatorFrequency {
	for i := range f {
		if f[i].Operator == op {
			f[i].Count += n
			return f
		}
	}
	return append(f, OperatorCount{Operator: op, Count: n})
}

// Get returns the count recorded for op.
func (f OperatorFrequency) Get(op string) (int, bool) {
	for _, oc := range f {
		if oc.Operator == op {
			return oc.Count, true
		}
	}
	return 0, false
}

// MarshalJSON renders the frequency as a JSON object in insertion order.
func (f OperatorFrequency) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, oc := range f {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := marshalString(oc.Operator)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(oc.Count))
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

// VisualizationData is the chart-oriented summary of a result.
type VisualizationData struct {
	TokenDistribution TokenDistribution `json:"token_distribution"`
	OperatorFrequency OperatorFrequency `json:"operator_frequency"`
	ComplexityMetrics ComplexityMetrics `json:"complexity_metrics"`
}

// AnalysisResult is the complete output of one analysis.
type AnalysisResult struct {
	CleanedCode       string            `json:"cleaned_code"`
	Constants         []string          `json:"constants"`
	Keywords          []string          `json:"keywords"`
	Identifiers       []string          `json:"identifiers"`
	Operators         []string          `json:"operators"`
	SymbolTable       []SymbolEntry     `json:"symbol_table"`
	Statistics        Statistics        `json:"statistics"`
	ComplexityMetrics ComplexityMetrics `json:"complexity_metrics"`
	Visualization     VisualizationData `json:"visualization_data"`
}

// AdvancedResult extends AnalysisResult with structural diagnostics.
type AdvancedResult struct {
	AnalysisResult
	SyntaxErrors []string `json:"syntax_errors"`
}

// FileReport pairs a result with the file it was computed from.
type FileReport struct {
	Path     string          `json:"path"`
	Language Language        `json:"language"`
	Result   *AnalysisResult `json:"result"`
}
