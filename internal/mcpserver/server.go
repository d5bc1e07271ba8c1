// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes rulekit tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/rulekit/internal/mdc"
	"github.com/starford/rulekit/internal/rules"
	"github.com/starford/rulekit/internal/storage"
	"github.com/starford/rulekit/internal/tokens"
)

// Server wraps the MCP server with rulekit tools.
type Server struct {
	mcp        *server.MCPServer
	store      storage.Provider
	linter     *rules.Linter
	calc       *tokens.Calculator
	fullDir    string
	conciseDir string
}

// New creates a new MCP server with all rulekit tools registered.
// calc may be nil; the token tools then report an error result.
// fullDir and conciseDir are the default trees for compare_tokens.
func New(store storage.Provider, linter *rules.Linter, calc *tokens.Calculator, fullDir, conciseDir string) *Server {
	if fullDir == "" {
		fullDir = tokens.FullDirName
	}
	if conciseDir == "" {
		conciseDir = tokens.ConciseDirName
	}
	s := &Server{store: store, linter: linter, calc: calc, fullDir: fullDir, conciseDir: conciseDir}

	s.mcp = server.NewMCPServer(
		"Rulekit",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("validate_rule",
		mcp.WithDescription("Validate one rule file: structural checks plus, for .mdc "+
			"files, the frontmatter schema. Returns the JSON validation result."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the rule file (e.g. rulesets/01-general.mdc)")),
	), s.validateRule)

	s.mcp.AddTool(mcp.NewTool("lint_rules",
		mcp.WithDescription("Validate every rule file under a folder and return the "+
			"aggregated JSON report with a pass/fail summary."),
		mcp.WithString("folder", mcp.Description("Optional folder to lint (empty for the whole tree)")),
	), s.lintRules)

	s.mcp.AddTool(mcp.NewTool("read_rule",
		mcp.WithDescription("Read the full content of a rule file."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the rule file")),
	), s.readRule)

	s.mcp.AddTool(mcp.NewTool("count_tokens",
		mcp.WithDescription("Count the tokens of a rule file. For .mdc files the "+
			"content count excludes the frontmatter block."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the rule file")),
	), s.countTokens)

	s.mcp.AddTool(mcp.NewTool("compare_tokens",
		mcp.WithDescription("Compare full rule files against their concise variants and "+
			"report per-file and average token reduction."),
		mcp.WithString("directory", mcp.Description("Optional full-rules directory to scan (defaults to the configured tree)")),
	), s.compareTokens)

	s.mcp.AddTool(mcp.NewTool("get_mdc_contract",
		mcp.WithDescription("Returns the canonical MDC rule format contract. "+
			"Call this before creating or editing .mdc rule files."),
	), s.getMDCContract)

	// Resource: MDC format contract.
	s.mcp.AddResource(
		mcp.NewResource("rulekit://mdc-format", "MDC Format Contract",
			mcp.WithResourceDescription("Canonical MDC rule file format that all rules must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readMDCFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// checkDocument runs the structural checks plus the frontmatter schema
// for .mdc files.
func (s *Server) checkDocument(path, content string) rules.Result {
	res := s.linter.CheckContent(path, content)
	if filepath.Ext(path) == ".mdc" {
		schema := mdc.ValidateContent(path, content)
		res.Errors = append(res.Errors, schema.Errors...)
		res.Warnings = append(res.Warnings, schema.Warnings...)
		res.Valid = res.Valid && schema.Valid
	}
	return res
}

func (s *Server) validateRule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	out, _ := json.MarshalIndent(s.checkDocument(path, string(data)), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) lintRules(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := ""
	if f, err := req.RequireString("folder"); err == nil {
		folder = f
	}

	metas, err := s.store.List(folder)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results := []rules.Result{}
	passed, failed := 0, 0
	for _, m := range metas {
		data, readErr := s.store.Read(m.Path)
		if readErr != nil {
			continue
		}
		res := s.checkDocument(m.Path, string(data))
		results = append(results, res)
		if res.Valid {
			passed++
		} else {
			failed++
		}
	}

	out, _ := json.MarshalIndent(map[string]any{
		"results": results,
		"summary": map[string]int{
			"total":  len(results),
			"passed": passed,
			"failed": failed,
		},
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readRule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) countTokens(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.calc == nil {
		return mcp.NewToolResultError("tokenizer unavailable"), nil
	}
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}

	content := string(data)
	total := s.calc.CountText(content)
	contentTokens := total
	if filepath.Ext(path) == ".mdc" {
		contentTokens = s.calc.CountText(mdc.Body(content))
	}

	out, _ := json.MarshalIndent(map[string]any{
		"file":           path,
		"total_tokens":   total,
		"content_tokens": contentTokens,
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) compareTokens(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.calc == nil {
		return mcp.NewToolResultError("tokenizer unavailable"), nil
	}
	dir := s.fullDir
	if d, err := req.RequireString("directory"); err == nil && d != "" {
		dir = d
	}

	results, err := s.calc.ScanDirectory(dir, s.conciseDir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if results == nil {
		results = []tokens.Comparison{}
	}

	out, _ := json.MarshalIndent(tokens.ComparisonReport{
		Results: results,
		Summary: tokens.Summarize(results),
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getMDCContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(MDCFormatContract), nil
}

func (s *Server) readMDCFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "rulekit://mdc-format",
			MIMEType: "text/markdown",
			Text:     MDCFormatContract,
		},
	}, nil
}
