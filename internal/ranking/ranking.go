// Package ranking orders, filters and truncates multi-file reports.
package ranking

import (
	"cmp"
	"slices"
	"strings"

	"github.com/phobologic/lexscope/internal/model"
)

// ByComplexity sorts reports in place, highest cyclomatic complexity first.
// Ties are broken by function count, then path.
func ByComplexity(reports []model.FileReport) {
	slices.SortStableFunc(reports, func(a, b model.FileReport) int {
		am, bm := a.Result.ComplexityMetrics, b.Result.ComplexityMetrics
		if c := cmp.Compare(bm.CyclomaticComplexity, am.CyclomaticComplexity); c != 0 {
			return c
		}
		if c := cmp.Compare(bm.FunctionCount, am.FunctionCount); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
}

// Top returns the first n reports. If n is <= 0 or >= len(reports), all
// reports are returned.
func Top(reports []model.FileReport, n int) []model.FileReport {
	if n <= 0 || n >= len(reports) {
		return reports
	}
	return reports[:n]
}

// FilterByFile returns the reports whose path contains substr
// (case-insensitive).
func FilterByFile(reports []model.FileReport, substr string) []model.FileReport {
	lower := strings.ToLower(substr)

	var kept []model.FileReport
	for i := range reports {
		if strings.Contains(strings.ToLower(reports[i].Path), lower) {
			kept = append(kept, reports[i])
		}
	}
	return kept
}

// FilterBySymbol returns the reports with at least one symbol table entry
// whose token contains substr (case-insensitive). Each returned report
// carries a copy of its result with the symbol table trimmed to the
// matching entries, so the originals are left untouched.
func FilterBySymbol(reports []model.FileReport, substr string) []model.FileReport {
	lower := strings.ToLower(substr)

	var kept []model.FileReport
	for i := range reports {
		r := reports[i]
		var matched []model.SymbolEntry
		for _, e := range r.Result.SymbolTable {
			if strings.Contains(strings.ToLower(e.Token), lower) {
				matched = append(matched, e)
			}
		}
		if len(matched) == 0 {
			continue
		}
		res := *r.Result
		res.SymbolTable = matched
		r.Result = &res
		kept = append(kept, r)
	}
	return kept
}
