package cache

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/lexscope/internal/analyzer"
	"github.com/phobologic/lexscope/internal/model"
)

type countingEngine struct {
	inner    analyzer.Engine
	basic    atomic.Int32
	advanced atomic.Int32
}

func (c *countingEngine) Analyze(u model.SourceUnit) *model.AnalysisResult {
	c.basic.Add(1)
	return c.inner.Analyze(u)
}

func (c *countingEngine) AnalyzeAdvanced(ctx context.Context, u model.SourceUnit) *model.AdvancedResult {
	c.advanced.Add(1)
	return c.inner.AnalyzeAdvanced(ctx, u)
}

func newEngine(t *testing.T) (*Engine, *countingEngine) {
	t.Helper()
	counter := &countingEngine{inner: analyzer.New(analyzer.Options{})}
	e, err := New(counter, 16)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e, counter
}

func TestEngineMemoizes(t *testing.T) {
	t.Parallel()
	e, counter := newEngine(t)

	u := model.SourceUnit{Text: "int x = 5;", Language: model.Cpp}
	first := e.Analyze(u)
	second := e.Analyze(u)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), counter.basic.Load())

	hits, misses := e.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestEngineKeysIncludeLanguageAndMode(t *testing.T) {
	t.Parallel()
	e, counter := newEngine(t)
	ctx := context.Background()

	e.Analyze(model.SourceUnit{Text: "x", Language: model.Cpp})
	e.Analyze(model.SourceUnit{Text: "x", Language: model.Java})
	e.Analyze(model.SourceUnit{Text: "y", Language: model.Java})
	assert.Equal(t, int32(3), counter.basic.Load())

	e.AnalyzeAdvanced(ctx, model.SourceUnit{Text: "x", Language: model.Cpp})
	e.AnalyzeAdvanced(ctx, model.SourceUnit{Text: "x", Language: model.Cpp})
	assert.Equal(t, int32(1), counter.advanced.Load())
}

func TestEngineMatchesUncached(t *testing.T) {
	t.Parallel()
	e, _ := newEngine(t)

	u := model.SourceUnit{Text: "if (a || b) { c = 'z'; }", Language: model.Java}
	assert.Equal(t, analyzer.Analyze(u), e.Analyze(u))
	assert.Equal(t, analyzer.AnalyzeAdvanced(context.Background(), u, analyzer.Options{}),
		e.AnalyzeAdvanced(context.Background(), u))
}

// ctxEngine drops its extra diagnostic when ctx is done, like an
// interrupted tree-sitter parse.
type ctxEngine struct {
	analyzer.Engine
	calls atomic.Int32
}

func (c *ctxEngine) AnalyzeAdvanced(ctx context.Context, u model.SourceUnit) *model.AdvancedResult {
	c.calls.Add(1)
	res := c.Engine.AnalyzeAdvanced(ctx, u)
	if ctx.Err() == nil {
		res.SyntaxErrors = append(res.SyntaxErrors, "Syntax error at line 1, column 1")
	}
	return res
}

func TestEngineSkipsResultsFromDoneContext(t *testing.T) {
	t.Parallel()

	inner := &ctxEngine{Engine: analyzer.New(analyzer.Options{})}
	e, err := New(inner, 16)
	require.NoError(t, err)
	t.Cleanup(e.Close)

	u := model.SourceUnit{Text: "int main() {", Language: model.Cpp}
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	partial := e.AnalyzeAdvanced(cancelled, u)
	assert.NotContains(t, partial.SyntaxErrors, "Syntax error at line 1, column 1")

	full := e.AnalyzeAdvanced(context.Background(), u)
	assert.Contains(t, full.SyntaxErrors, "Syntax error at line 1, column 1")
	assert.Equal(t, int32(2), inner.calls.Load())

	again := e.AnalyzeAdvanced(context.Background(), u)
	assert.Same(t, full, again)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestNewRejectsZeroCapacity(t *testing.T) {
	t.Parallel()

	_, err := New(analyzer.New(analyzer.Options{}), 0)
	assert.Error(t, err)
}
