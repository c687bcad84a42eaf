// Package normalize produces the comment-free, whitespace-trimmed view of a
// source text.
package normalize

import (
	"regexp"
	"strings"
)

var (
	lineCommentRe  = regexp.MustCompile(`(?m)//.*$`)
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// Normalize strips line comments, then block comments, then trims every line
// and drops the ones left empty. Line comments go first, so a "//" inside a
// block comment swallows the rest of that line, closing marker included.
func Normalize(text string) string {
	text = lineCommentRe.ReplaceAllString(text, "")
	text = blockCommentRe.ReplaceAllString(text, "")

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
