// Package syntax flags basic structural issues in raw source: unbalanced
// brackets and suspected missing statement terminators.
package syntax

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

var (
	closerFor = map[rune]rune{'(': ')', '[': ']', '{': '}'}
	isCloser  = map[rune]bool{')': true, ']': true, '}': true}

	declAssignRe = regexp2.MustCompile(`\b(int|float|double|char|string|bool)\s+\w+\s*=`, regexp2.None)
	lineEnders   = []string{";", "{", "}", "//", "/*", "*/"}
)

type opener struct {
	char rune
	pos  int
}

// Check returns bracket diagnostics followed by terminator diagnostics.
func Check(src string) []string {
	return append(CheckBrackets(src), CheckTerminators(src)...)
}

// CheckBrackets scans src once with a stack of open brackets. Positions are
// rune offsets into src. A mismatched pair consumes the opener.
func CheckBrackets(src string) []string {
	diags := []string{}
	var stack []opener

	pos := 0
	for _, ch := range src {
		switch {
		case closerFor[ch] != 0:
			stack = append(stack, opener{char: ch, pos: pos})
		case isCloser[ch]:
			if len(stack) == 0 {
				diags = append(diags, fmt.Sprintf("Unmatched closing bracket '%c' at position %d", ch, pos))
				break
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if closerFor[top.char] != ch {
				diags = append(diags, fmt.Sprintf("Mismatched brackets: '%c' and '%c' at position %d", top.char, ch, pos))
			}
		}
		pos++
	}

	for _, o := range stack {
		diags = append(diags, fmt.Sprintf("Unmatched opening bracket '%c' at position %d", o.char, o.pos))
	}
	return diags
}

// CheckTerminators reports lines that look like an initialised declaration
// of a primitive type but do not end with a statement terminator.
func CheckTerminators(src string) []string {
	diags := []string{}
	for i, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || hasAnySuffix(line, lineEnders) {
			continue
		}
		if ok, _ := declAssignRe.MatchString(line); ok {
			diags = append(diags, fmt.Sprintf("Missing semicolon at line %d", i+1))
		}
	}
	return diags
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}
