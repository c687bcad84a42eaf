package mcptool

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/lexscope/internal/analyzer"
	"github.com/phobologic/lexscope/internal/model"
)

func call(t *testing.T, h handlerFunc, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	result, err := h(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	})
	require.NoError(t, err, "should not return system error")
	require.NotNil(t, result)
	return result
}

func text(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	tc, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "should be text content")
	return tc.Text
}

func TestNewServer(t *testing.T) {
	t.Parallel()

	s := NewServer(analyzer.New(analyzer.Options{}), "test")
	assert.NotNil(t, s)
}

func TestAnalyzeCodeHandler(t *testing.T) {
	t.Parallel()

	h := createAnalyzeCodeHandler(analyzer.New(analyzer.Options{}))
	result := call(t, h, map[string]any{"code": "int x = 5; // comment", "language": "cpp"})
	assert.False(t, result.IsError)

	want, err := model.MarshalJSON(analyzer.Analyze(model.SourceUnit{Text: "int x = 5; // comment", Language: model.Cpp}))
	require.NoError(t, err)
	assert.Equal(t, string(want), text(t, result))
}

func TestAnalyzeCodeHandlerAdvanced(t *testing.T) {
	t.Parallel()

	h := createAnalyzeCodeHandler(analyzer.New(analyzer.Options{}))
	result := call(t, h, map[string]any{"code": "(((", "language": "java", "advanced": true})
	assert.False(t, result.IsError)

	var res struct {
		SyntaxErrors []string `json:"syntax_errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &res))
	assert.Equal(t, []string{
		"Unmatched opening bracket '(' at position 0",
		"Unmatched opening bracket '(' at position 1",
		"Unmatched opening bracket '(' at position 2",
	}, res.SyntaxErrors)
}

func TestAnalyzeCodeHandlerUserErrors(t *testing.T) {
	t.Parallel()

	h := createAnalyzeCodeHandler(analyzer.New(analyzer.Options{}))

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing code", map[string]any{"language": "cpp"}, "code parameter is required"},
		{"missing language", map[string]any{"code": "x"}, "language parameter is required"},
		{"unsupported language", map[string]any{"code": "x", "language": "go"}, "unsupported language"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := call(t, h, tt.args)
			assert.True(t, result.IsError)
			assert.Contains(t, text(t, result), tt.want)
		})
	}
}

func TestAnalyzeFileHandler(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "Main.java")
	require.NoError(t, os.WriteFile(path, []byte("class Main { int run() { return 1; } }"), 0o644))

	h := createAnalyzeFileHandler(analyzer.New(analyzer.Options{}))
	result := call(t, h, map[string]any{"path": path})
	assert.False(t, result.IsError)
	assert.Contains(t, text(t, result), `"keywords":["class","int","return"]`)
}

func TestAnalyzeFileHandlerUserErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.cpp")
	require.NoError(t, os.WriteFile(bad, []byte{0xff, 0xfe}, 0o644))

	h := createAnalyzeFileHandler(analyzer.New(analyzer.Options{}))

	tests := []struct {
		name string
		path string
		want string
	}{
		{"unsupported extension", filepath.Join(dir, "a.py"), "unsupported language"},
		{"missing file", filepath.Join(dir, "missing.cpp"), "no such file"},
		{"not text", bad, "not valid UTF-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := call(t, h, map[string]any{"path": tt.path})
			assert.True(t, result.IsError)
			assert.Contains(t, text(t, result), tt.want)
		})
	}
}
