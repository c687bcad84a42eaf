// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/phobologic/lexscope/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// EncodeResult converts one analysis result into TOON format. diagnostics
// are emitted as a trailing section when non-nil, so an advanced result
// with no findings still shows an empty diagnostics table.
func EncodeResult(name string, lang model.Language, res *model.AnalysisResult, diagnostics []string) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("file: %s", encodeValue(name)))
	parts = append(parts, fmt.Sprintf("language: %s", encodeValue(string(lang))))

	st := res.Statistics
	parts = append(parts, formatTabular("statistics",
		[]string{"lines", "tokens", "keywords", "constants", "identifiers", "operators"},
		[][]string{{
			strconv.Itoa(st.TotalLines),
			strconv.Itoa(st.TotalTokens),
			strconv.Itoa(st.KeywordsCount),
			strconv.Itoa(st.ConstantsCount),
			strconv.Itoa(st.IdentifiersCount),
			strconv.Itoa(st.OperatorsCount),
		}}))

	cm := res.ComplexityMetrics
	parts = append(parts, formatTabular("complexity",
		[]string{"cyclomatic", "functions", "comment_density"},
		[][]string{{
			strconv.Itoa(cm.CyclomaticComplexity),
			strconv.Itoa(cm.FunctionCount),
			formatPercent(cm.CommentDensity),
		}}))

	var symbolRows [][]string
	for _, e := range res.SymbolTable {
		symbolRows = append(symbolRows, []string{e.Token, string(e.Type), strconv.Itoa(e.Count)})
	}
	parts = append(parts, formatTabular("symbols", []string{"token", "type", "count"}, symbolRows))

	var opRows [][]string
	for _, oc := range res.Visualization.OperatorFrequency {
		opRows = append(opRows, []string{oc.Operator, strconv.Itoa(oc.Count)})
	}
	parts = append(parts, formatTabular("operators", []string{"operator", "count"}, opRows))

	if diagnostics != nil {
		var diagRows [][]string
		for _, d := range diagnostics {
			diagRows = append(diagRows, []string{d})
		}
		parts = append(parts, formatTabular("diagnostics", []string{"message"}, diagRows))
	}

	return strings.Join(parts, "\n")
}

// EncodeReport converts a multi-file scan into TOON format: one summary row
// per file followed by the identifiers each file defines.
func EncodeReport(root string, reports []model.FileReport) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("root: %s", encodeValue(root)))

	var fileRows [][]string
	for i := range reports {
		r := &reports[i]
		fileRows = append(fileRows, []string{
			r.Path,
			string(r.Language),
			strconv.Itoa(r.Result.Statistics.TotalLines),
			strconv.Itoa(r.Result.Statistics.TotalTokens),
			strconv.Itoa(r.Result.ComplexityMetrics.CyclomaticComplexity),
			strconv.Itoa(r.Result.ComplexityMetrics.FunctionCount),
			formatPercent(r.Result.ComplexityMetrics.CommentDensity),
		})
	}
	parts = append(parts, formatTabular("files",
		[]string{"path", "language", "lines", "tokens", "complexity", "functions", "comment_density"}, fileRows))

	var identRows [][]string
	for i := range reports {
		r := &reports[i]
		for _, e := range r.Result.SymbolTable {
			if e.Type == model.Identifier {
				identRows = append(identRows, []string{r.Path, e.Token, strconv.Itoa(e.Count)})
			}
		}
	}
	parts = append(parts, formatTabular("identifiers", []string{"file", "token", "count"}, identRows))

	return strings.Join(parts, "\n")
}

func formatPercent(p model.Percent) string {
	return fmt.Sprintf("%.2f", float64(p))
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
