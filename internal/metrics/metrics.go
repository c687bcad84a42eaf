// Package metrics computes coarse complexity approximations over raw source.
package metrics

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/phobologic/lexscope/internal/model"
)

var (
	branchWords     = []string{"if", "while", "for", "case", "catch"}
	branchOperators = []string{"&&", "||", "?"}

	cppFuncRe  = regexp2.MustCompile(`\b\w+\s+\w+\s*\([^)]*\)\s*\{`, regexp2.None)
	javaFuncRe = regexp2.MustCompile(`\b(public|private|protected|static)?\s*\w+\s+\w+\s*\([^)]*\)\s*\{`, regexp2.None)

	commentPrefixes = []string{"//", "/*", "*"}
)

// Compute returns all metrics for src.
func Compute(src string) model.ComplexityMetrics {
	return model.ComplexityMetrics{
		CyclomaticComplexity: Cyclomatic(src),
		FunctionCount:        FunctionCount(src),
		CommentDensity:       model.Percent(CommentDensity(src)),
	}
}

// Cyclomatic approximates cyclomatic complexity as 1 plus the substring
// counts of branch keywords, short-circuit operators and "?". Matches inside
// identifiers, comments and strings count too ("format" adds one for "for").
func Cyclomatic(src string) int {
	n := 1
	for _, w := range branchWords {
		n += strings.Count(src, w)
	}
	for _, op := range branchOperators {
		n += strings.Count(src, op)
	}
	return n
}

// FunctionCount approximates the number of function definitions as the larger
// match count of a "type name(params) {" shape and a variant allowing a
// leading visibility or static modifier.
func FunctionCount(src string) int {
	return max(countMatches(cppFuncRe, src), countMatches(javaFuncRe, src))
}

// CommentDensity is the percentage of lines whose trimmed form starts with a
// comment marker. Lines inside a block comment only count if they start
// with "*".
func CommentDensity(src string) float64 {
	lines := strings.Split(src, "\n")
	if len(lines) == 0 {
		return 0
	}
	comments := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		for _, p := range commentPrefixes {
			if strings.HasPrefix(line, p) {
				comments++
				break
			}
		}
	}
	return float64(comments) / float64(len(lines)) * 100
}

func countMatches(re *regexp2.Regexp, s string) int {
	n := 0
	m, err := re.FindStringMatch(s)
	for err == nil && m != nil {
		n++
		m, err = re.FindNextMatch(m)
	}
	return n
}
