package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/rulekit/internal/rules"
	"github.com/starford/rulekit/internal/storage"
)

func testServer(t *testing.T) (*Server, storage.Provider) {
	t.Helper()

	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	srv := New(store, rules.NewLinter(rules.Limits{}), nil, "", "")
	return srv, store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so we invoke the
	// handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "validate_rule":
		result, err = srv.validateRule(ctx, req)
	case "lint_rules":
		result, err = srv.lintRules(ctx, req)
	case "read_rule":
		result, err = srv.readRule(ctx, req)
	case "count_tokens":
		result, err = srv.countTokens(ctx, req)
	case "compare_tokens":
		result, err = srv.compareTokens(ctx, req)
	case "get_mdc_contract":
		result, err = srv.getMDCContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestValidateRule(t *testing.T) {
	srv, store := testServer(t)
	_ = store.Write("rulesets/01-general.md",
		[]byte("# General\n\n```go\n// Good\n```\n\n```go\n// Bad\n```\n"))

	r := callTool(t, srv, "validate_rule", map[string]interface{}{
		"path": "rulesets/01-general.md",
	})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	var res rules.Result
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatal(err)
	}
	if !res.Valid {
		t.Errorf("result = %+v", res)
	}
}

func TestValidateRule_MDCSchema(t *testing.T) {
	srv, store := testServer(t)
	_ = store.Write("rulesets/01-general.mdc", []byte("# No frontmatter\n"))

	r := callTool(t, srv, "validate_rule", map[string]interface{}{
		"path": "rulesets/01-general.mdc",
	})
	var res rules.Result
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatal(err)
	}
	if res.Valid {
		t.Error("missing frontmatter should fail validation")
	}
}

func TestValidateRule_Missing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "validate_rule", map[string]interface{}{"path": "nope.md"})
	if !r.IsError {
		t.Error("expected error for missing rule")
	}
}

func TestLintRules(t *testing.T) {
	srv, store := testServer(t)
	_ = store.Write("rulesets/01-a.md",
		[]byte("# A\n\n```go\n// Good\n```\n\n```go\n// Bad\n```\n"))
	_ = store.Write("rulesets/bad name.md",
		[]byte("# B\n\n```go\n// Good\n```\n\n```go\n// Bad\n```\n"))

	r := callTool(t, srv, "lint_rules", map[string]interface{}{})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	var resp struct {
		Summary struct {
			Total  int `json:"total"`
			Passed int `json:"passed"`
			Failed int `json:"failed"`
		} `json:"summary"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Summary.Total != 2 || resp.Summary.Failed != 1 {
		t.Errorf("summary = %+v", resp.Summary)
	}
}

func TestReadRule(t *testing.T) {
	srv, store := testServer(t)
	_ = store.Write("rulesets/01-a.md", []byte("# A\nbody"))

	r := callTool(t, srv, "read_rule", map[string]interface{}{"path": "rulesets/01-a.md"})
	if resultText(r) != "# A\nbody" {
		t.Errorf("read result = %q", resultText(r))
	}
}

func TestCountTokens_UnavailableWithoutTokenizer(t *testing.T) {
	srv, store := testServer(t)
	_ = store.Write("rulesets/01-a.md", []byte("# A\n"))

	r := callTool(t, srv, "count_tokens", map[string]interface{}{"path": "rulesets/01-a.md"})
	if !r.IsError {
		t.Error("expected error when tokenizer is unavailable")
	}
}

func TestCompareTokens_UnavailableWithoutTokenizer(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "compare_tokens", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error when tokenizer is unavailable")
	}
}

func TestGetMDCContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_mdc_contract", nil)
	text := resultText(r)
	if !strings.Contains(text, "alwaysApply") || !strings.Contains(text, "description") {
		t.Errorf("contract missing required keys: %q", text[:80])
	}
}
