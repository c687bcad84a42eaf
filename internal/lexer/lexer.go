// Package lexer classifies substrings of raw C++/Java source into keywords,
// constants, identifiers and operators.
//
// Classification is pattern matching over the raw, uncleaned text. Comments
// and string bodies are not skipped, so their contents can contribute
// matches. Precedence is Keyword > Constant > Identifier.
package lexer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"

	"github.com/phobologic/lexscope/internal/model"
)

// Constant patterns need look-behind, hence regexp2 rather than RE2.
var (
	intRe    = regexp2.MustCompile(`(?<![a-zA-Z_])\d+(?![a-zA-Z_])`, regexp2.None)
	floatRe  = regexp2.MustCompile(`(?<![a-zA-Z_])\d+\.\d+(?![a-zA-Z_])`, regexp2.None)
	stringRe = regexp2.MustCompile(`"[^"]*"`, regexp2.None)
	charRe   = regexp2.MustCompile(`'[^']*'`, regexp2.None)
	boolRe   = regexp2.MustCompile(`\b(true|false)\b`, regexp2.IgnoreCase)

	identRe = regexp2.MustCompile(`\b[a-zA-Z_][a-zA-Z0-9_]*\b`, regexp2.None)

	// Word shapes dropped from identifiers: pure numbers, word+digits, digits+word.
	excludedShapes = []*regexp.Regexp{
		regexp.MustCompile(`^[0-9]+$`),
		regexp.MustCompile(`^[a-zA-Z]+[0-9]+$`),
		regexp.MustCompile(`^[0-9]+[a-zA-Z]+$`),
	}

	keywordRes = compileKeywords(keywordCatalogue)
)

type keywordPattern struct {
	word string
	re   *regexp2.Regexp
}

func compileKeywords(words []string) []keywordPattern {
	out := make([]keywordPattern, len(words))
	for i, w := range words {
		out[i] = keywordPattern{
			word: w,
			re:   regexp2.MustCompile(`\b`+regexp2.Escape(w)+`\b`, regexp2.IgnoreCase),
		}
	}
	return out
}

// Classification holds the four token collections found in one source.
type Classification struct {
	Keywords    []string
	Constants   []string
	Identifiers []string
	Operators   []model.ClassifiedToken
}

// Classify runs every pass over src.
func Classify(src string) Classification {
	kws := Keywords(src)
	consts := Constants(src)
	return Classification{
		Keywords:    kws,
		Constants:   consts,
		Identifiers: identifiers(src, kws, consts),
		Operators:   Operators(src),
	}
}

// Constants returns the distinct integer, float, string, character and
// boolean literals of src, in order of first discovery across those passes.
func Constants(src string) []string {
	var found []string
	found = append(found, findAll(intRe, src, 0)...)
	found = append(found, findAll(floatRe, src, 0)...)
	found = append(found, findAll(stringRe, src, 0)...)
	found = append(found, findAll(charRe, src, 0)...)
	found = append(found, findAll(boolRe, src, 1)...)
	return dedupe(found)
}

// Keywords returns the catalogue entries that occur in src as whole words,
// ignoring case. Entries are reported in catalogue spelling and order.
func Keywords(src string) []string {
	found := []string{}
	if src == "" {
		return found
	}
	for _, kp := range keywordRes {
		if ok, _ := kp.re.MatchString(src); ok {
			found = append(found, kp.word)
		}
	}
	return found
}

// Identifiers returns the identifier-shaped words of src that survive the
// keyword, constant, string-body and shape filters.
func Identifiers(src string) []string {
	return identifiers(src, Keywords(src), Constants(src))
}

func identifiers(src string, keywords, constants []string) []string {
	excluded := make(map[string]struct{}, len(keywords)+len(constants))
	for _, k := range keywords {
		excluded[k] = struct{}{}
	}
	for _, c := range constants {
		excluded[c] = struct{}{}
	}
	for _, lit := range findAll(stringRe, src, 0) {
		for _, w := range findAll(identRe, lit, 0) {
			excluded[w] = struct{}{}
		}
	}

	var kept []string
	for _, w := range findAll(identRe, src, 0) {
		if _, ok := excluded[w]; ok {
			continue
		}
		if utf8.RuneCountInString(w) <= 1 || excludedShape(w) {
			continue
		}
		kept = append(kept, w)
	}
	return dedupe(kept)
}

func excludedShape(w string) bool {
	for _, re := range excludedShapes {
		if re.MatchString(w) {
			return true
		}
	}
	return false
}

// Operators returns every catalogue operator present in src with its
// non-overlapping substring count, in catalogue order.
func Operators(src string) []model.ClassifiedToken {
	found := []model.ClassifiedToken{}
	for _, op := range OperatorCatalogue {
		if n := strings.Count(src, op); n > 0 {
			found = append(found, model.ClassifiedToken{Lexeme: op, Category: model.Operator, Count: n})
		}
	}
	return found
}

// FormatOperator renders an operator as "<op> (used N times)".
func FormatOperator(tok model.ClassifiedToken) string {
	return fmt.Sprintf("%s (used %d times)", tok.Lexeme, tok.Count)
}

// findAll returns the text of capture group for every non-overlapping match.
func findAll(re *regexp2.Regexp, s string, group int) []string {
	var out []string
	m, err := re.FindStringMatch(s)
	for err == nil && m != nil {
		if group == 0 {
			out = append(out, m.String())
		} else {
			out = append(out, m.GroupByNumber(group).String())
		}
		m, err = re.FindNextMatch(m)
	}
	return out
}
