// Package mcptool exposes the analyzer as MCP tools.
package mcptool

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/phobologic/lexscope/internal/analyzer"
	"github.com/phobologic/lexscope/internal/lang"
	"github.com/phobologic/lexscope/internal/model"
)

type handlerFunc = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// NewServer returns an MCP server with every lexscope tool registered.
func NewServer(engine analyzer.Engine, version string) *server.MCPServer {
	s := server.NewMCPServer("lexscope", version, server.WithToolCapabilities(true))
	AddAnalyzeCodeTool(s, engine)
	AddAnalyzeFileTool(s, engine)
	return s
}

// AddAnalyzeCodeTool registers the analyze_code tool.
func AddAnalyzeCodeTool(s *server.MCPServer, engine analyzer.Engine) {
	tool := mcp.NewTool(
		"analyze_code",
		mcp.WithDescription("Heuristic lexical analysis of C++ or Java source: keywords, constants, identifiers, operators, symbol table, complexity metrics. Set advanced for bracket and semicolon diagnostics."),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("Source text to analyze")),
		mcp.WithString("language",
			mcp.Required(),
			mcp.Description("Source language: cpp or java")),
		mcp.WithBoolean("advanced",
			mcp.Description("Include syntax diagnostics (default: false)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(tool, createAnalyzeCodeHandler(engine))
}

// AddAnalyzeFileTool registers the analyze_file tool.
func AddAnalyzeFileTool(s *server.MCPServer, engine analyzer.Engine) {
	tool := mcp.NewTool(
		"analyze_file",
		mcp.WithDescription("Heuristic lexical analysis of a local C++ or Java file. The language is taken from the file extension."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path of the source file")),
		mcp.WithBoolean("advanced",
			mcp.Description("Include syntax diagnostics (default: false)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(tool, createAnalyzeFileHandler(engine))
}

func createAnalyzeCodeHandler(engine analyzer.Engine) handlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		code, err := request.RequireString("code")
		if err != nil {
			return mcp.NewToolResultError("code parameter is required"), nil
		}
		name, err := request.RequireString("language")
		if err != nil {
			return mcp.NewToolResultError("language parameter is required"), nil
		}
		language, err := model.ParseLanguage(name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		unit := model.SourceUnit{Text: code, Language: language}
		return analyze(ctx, engine, unit, request.GetBool("advanced", false))
	}
}

func createAnalyzeFileHandler(engine analyzer.Engine) handlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := request.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError("path parameter is required"), nil
		}
		language := lang.ForExtension(filepath.Ext(path))
		if language == "" {
			return mcp.NewToolResultError(fmt.Sprintf("%s: %v", path, model.ErrUnsupportedLanguage)), nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		unit, err := model.NewSourceUnit(data, language)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s: %v", path, err)), nil
		}
		return analyze(ctx, engine, unit, request.GetBool("advanced", false))
	}
}

func analyze(ctx context.Context, engine analyzer.Engine, unit model.SourceUnit, advanced bool) (*mcp.CallToolResult, error) {
	var res any
	if advanced {
		res = engine.AnalyzeAdvanced(ctx, unit)
	} else {
		res = engine.Analyze(unit)
	}
	return marshalToolResponse(res)
}

func marshalToolResponse(response any) (*mcp.CallToolResult, error) {
	data, err := model.MarshalJSON(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
