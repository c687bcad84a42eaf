// Package analyzer composes normalization, classification, the symbol
// table, metrics and diagnostics into one AnalysisResult.
package analyzer

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/phobologic/lexscope/internal/lexer"
	"github.com/phobologic/lexscope/internal/metrics"
	"github.com/phobologic/lexscope/internal/model"
	"github.com/phobologic/lexscope/internal/normalize"
	"github.com/phobologic/lexscope/internal/symtab"
	"github.com/phobologic/lexscope/internal/syntax"
)

var (
	distributionLabels = []string{"Keywords", "Constants", "Identifiers", "Operators"}
	distributionColors = []string{"#3B82F6", "#8B5CF6", "#10B981", "#F59E0B"}
)

// Engine produces analysis results. Implementations must be safe for
// concurrent use.
type Engine interface {
	Analyze(unit model.SourceUnit) *model.AnalysisResult
	AnalyzeAdvanced(ctx context.Context, unit model.SourceUnit) *model.AdvancedResult
}

// Options tunes advanced analysis.
type Options struct {
	// TreeSitter appends tree-sitter parse errors to the syntax diagnostics.
	TreeSitter bool
	Logger     *slog.Logger
}

// Analyzer is the default Engine.
type Analyzer struct {
	opts Options
}

// New returns an Analyzer using opts.
func New(opts Options) *Analyzer {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Analyzer{opts: opts}
}

// Analyze implements Engine.
func (a *Analyzer) Analyze(unit model.SourceUnit) *model.AnalysisResult {
	return Analyze(unit)
}

// AnalyzeAdvanced implements Engine.
func (a *Analyzer) AnalyzeAdvanced(ctx context.Context, unit model.SourceUnit) *model.AdvancedResult {
	return AnalyzeAdvanced(ctx, unit, a.opts)
}

// Analyze runs the full heuristic pipeline over unit. Every pass reads the
// raw text; the cleaned code is carried along for display only.
func Analyze(unit model.SourceUnit) *model.AnalysisResult {
	src := unit.Text

	cls := lexer.Classify(src)
	operators := make([]string, len(cls.Operators))
	for i, tok := range cls.Operators {
		operators[i] = lexer.FormatOperator(tok)
	}
	complexity := metrics.Compute(src)

	return &model.AnalysisResult{
		CleanedCode: normalize.Normalize(src),
		Constants:   cls.Constants,
		Keywords:    cls.Keywords,
		Identifiers: cls.Identifiers,
		Operators:   operators,
		SymbolTable: symtab.Build(src, cls.Keywords, cls.Constants, cls.Identifiers),
		Statistics: model.Statistics{
			TotalLines:       strings.Count(src, "\n") + 1,
			TotalTokens:      len(cls.Keywords) + len(cls.Constants) + len(cls.Identifiers),
			KeywordsCount:    len(cls.Keywords),
			ConstantsCount:   len(cls.Constants),
			IdentifiersCount: len(cls.Identifiers),
			OperatorsCount:   len(operators),
		},
		ComplexityMetrics: complexity,
		Visualization: model.VisualizationData{
			TokenDistribution: model.TokenDistribution{
				Labels: distributionLabels,
				Values: []int{len(cls.Keywords), len(cls.Constants), len(cls.Identifiers), len(operators)},
				Colors: distributionColors,
			},
			OperatorFrequency: ParseOperatorFrequency(operators),
			ComplexityMetrics: complexity,
		},
	}
}

// AnalyzeAdvanced is Analyze plus bracket and terminator diagnostics, and
// tree-sitter parse errors when opts.TreeSitter is set. A failed probe is
// logged and skipped.
func AnalyzeAdvanced(ctx context.Context, unit model.SourceUnit, opts Options) *model.AdvancedResult {
	res := &model.AdvancedResult{
		AnalysisResult: *Analyze(unit),
		SyntaxErrors:   syntax.Check(unit.Text),
	}
	if !opts.TreeSitter {
		return res
	}

	diags, err := syntax.Probe(ctx, unit.Language, unit.Text)
	if err != nil {
		if opts.Logger != nil {
			opts.Logger.Warn("tree-sitter probe failed", "language", unit.Language, "error", err)
		}
		return res
	}
	res.SyntaxErrors = append(res.SyntaxErrors, diags...)
	return res
}

// ParseOperatorFrequency rebuilds an operator→count mapping from
// "<op> (used N times)" strings. Entries without the suffix count once.
func ParseOperatorFrequency(operators []string) model.OperatorFrequency {
	freq := model.OperatorFrequency{}
	for _, entry := range operators {
		op, count := entry, 1
		if name, rest, ok := strings.Cut(entry, " (used "); ok {
			n, err := strconv.Atoi(strings.Replace(rest, " times)", "", 1))
			if err == nil {
				op, count = name, n
			}
		}
		freq = freq.Add(op, count)
	}
	return freq
}
