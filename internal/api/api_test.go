package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/rulekit/internal/rules"
	"github.com/starford/rulekit/internal/storage"
)

// testEnv sets up a temp rules tree and router.
// authToken == "" means auth is disabled.
func testEnv(t *testing.T, authToken string) (string, http.Handler) {
	t.Helper()

	root := t.TempDir()
	seed := map[string]string{
		"rulesets/01-general.md": "# General\n\n```go\n// Good\n```\n\n```go\n// Bad\n```\n",
		"rulesets/bad name.md":   "# Bad\n\n```go\n// Good\n```\n\n```go\n// Bad\n```\n",
		"README.md":              "# Readme\n",
	}
	for rel, content := range seed {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	h := NewHandler(store, rules.NewLinter(rules.Limits{}), nil, root, filepath.Join(root, ".concise-rules"))
	return root, NewRouter(h, authToken != "", authToken, nil)
}

func get(t *testing.T, router http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	_, router := testEnv(t, "")
	w := get(t, router, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestListFiles(t *testing.T) {
	_, router := testEnv(t, "")
	w := get(t, router, "/files", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Files []storage.DocInfo `json:"files"`
		Total int               `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 3 {
		t.Errorf("total = %d, want 3", resp.Total)
	}
}

func TestGetFile_Valid(t *testing.T) {
	_, router := testEnv(t, "")
	w := get(t, router, "/files/rulesets/01-general.md", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var res rules.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if !res.Valid {
		t.Errorf("result = %+v", res)
	}
}

func TestGetFile_InvalidName(t *testing.T) {
	_, router := testEnv(t, "")
	w := get(t, router, "/files/rulesets/bad%20name.md", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var res rules.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Valid {
		t.Errorf("expected filename error, got %+v", res)
	}
}

func TestGetFile_Missing(t *testing.T) {
	_, router := testEnv(t, "")
	w := get(t, router, "/files/rulesets/ghost.md", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestReport(t *testing.T) {
	_, router := testEnv(t, "")
	w := get(t, router, "/report", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Summary struct {
			Total  int `json:"total"`
			Passed int `json:"passed"`
			Failed int `json:"failed"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	// README is exempt and passes; one good rule, one bad filename.
	if resp.Summary.Total != 3 || resp.Summary.Failed != 1 {
		t.Errorf("summary = %+v", resp.Summary)
	}
}

func TestTokens_UnavailableWithoutTokenizer(t *testing.T) {
	_, router := testEnv(t, "")
	w := get(t, router, "/tokens", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestAuth(t *testing.T) {
	_, router := testEnv(t, "secret")

	if w := get(t, router, "/files", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}
	if w := get(t, router, "/files", "wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d, want 401", w.Code)
	}
	if w := get(t, router, "/files", "secret"); w.Code != http.StatusOK {
		t.Errorf("valid token: status = %d, want 200", w.Code)
	}
}
