// Package cache memoizes analysis results by content hash. Analysis is a
// pure function of (language, text) once it runs to completion.
package cache

import (
	"context"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/maypok86/otter"

	"github.com/phobologic/lexscope/internal/analyzer"
	"github.com/phobologic/lexscope/internal/model"
)

type mode byte

const (
	basic mode = iota
	advanced
)

type key struct {
	mode mode
	lang model.Language
	hash uint64
	size int
}

// Engine wraps an analyzer.Engine with a bounded in-memory cache.
type Engine struct {
	next     analyzer.Engine
	basic    otter.Cache[key, *model.AnalysisResult]
	advanced otter.Cache[key, *model.AdvancedResult]
}

// New returns a caching Engine holding up to capacity results of each kind.
// Cached results are shared between callers and must not be mutated.
func New(next analyzer.Engine, capacity int) (*Engine, error) {
	b, err := build[*model.AnalysisResult](capacity)
	if err != nil {
		return nil, fmt.Errorf("building result cache: %w", err)
	}
	a, err := build[*model.AdvancedResult](capacity)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("building advanced result cache: %w", err)
	}
	return &Engine{next: next, basic: b, advanced: a}, nil
}

func build[V any](capacity int) (otter.Cache[key, V], error) {
	builder, err := otter.NewBuilder[key, V](capacity)
	if err != nil {
		return otter.Cache[key, V]{}, err
	}
	return builder.CollectStats().Build()
}

func keyFor(m mode, unit model.SourceUnit) key {
	return key{mode: m, lang: unit.Language, hash: xxhash.Sum64String(unit.Text), size: len(unit.Text)}
}

// Analyze implements analyzer.Engine.
func (e *Engine) Analyze(unit model.SourceUnit) *model.AnalysisResult {
	k := keyFor(basic, unit)
	if res, ok := e.basic.Get(k); ok {
		return res
	}
	res := e.next.Analyze(unit)
	e.basic.Set(k, res)
	return res
}

// AnalyzeAdvanced implements analyzer.Engine. A result computed while ctx
// was done may lack tree-sitter diagnostics, so it is returned but not kept.
func (e *Engine) AnalyzeAdvanced(ctx context.Context, unit model.SourceUnit) *model.AdvancedResult {
	k := keyFor(advanced, unit)
	if res, ok := e.advanced.Get(k); ok {
		return res
	}
	res := e.next.AnalyzeAdvanced(ctx, unit)
	if ctx.Err() == nil {
		e.advanced.Set(k, res)
	}
	return res
}

// Stats reports hits and misses across both caches.
func (e *Engine) Stats() (hits, misses int64) {
	bs, as := e.basic.Stats(), e.advanced.Stats()
	return bs.Hits() + as.Hits(), bs.Misses() + as.Misses()
}

// Close releases the caches.
func (e *Engine) Close() {
	e.basic.Close()
	e.advanced.Close()
}
