package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/rulekit/internal/mdc"
	"github.com/starford/rulekit/internal/report"
	"github.com/starford/rulekit/internal/rules"
	"github.com/starford/rulekit/internal/storage"
	"github.com/starford/rulekit/internal/tokens"
)

// Handler holds API route handlers.
type Handler struct {
	store      storage.Provider
	linter     *rules.Linter
	calc       *tokens.Calculator
	root       string
	conciseDir string
}

// NewHandler creates a new Handler. calc may be nil when the tokenizer
// is unavailable; the token endpoint then reports 503.
func NewHandler(store storage.Provider, linter *rules.Linter, calc *tokens.Calculator, root, conciseDir string) *Handler {
	return &Handler{
		store:      store,
		linter:     linter,
		calc:       calc,
		root:       root,
		conciseDir: conciseDir,
	}
}

// docPath extracts the document path from the URL (everything after
// /files/). Supports encoded slashes (e.g. rulesets%2F01-a.md).
func docPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// CheckDocument runs the structural checks, plus the frontmatter schema
// for .mdc files, and merges the findings into one result.
func (h *Handler) CheckDocument(rel string, content string) rules.Result {
	res := h.linter.CheckContent(rel, content)
	if filepath.Ext(rel) == ".mdc" {
		schema := mdc.ValidateContent(rel, content)
		res.Errors = append(res.Errors, schema.Errors...)
		res.Warnings = append(res.Warnings, schema.Warnings...)
		res.Valid = res.Valid && schema.Valid
	}
	return res
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListFiles handles GET /files: document metadata for the whole tree.
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List("")
	if err != nil {
		slog.Error("list files failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"files": items,
		"total": len(items),
	})
}

// GetFile handles GET /files/*: the validation result for one document.
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	rel := docPath(r)
	if rel == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	data, err := h.store.Read(rel)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, h.CheckDocument(rel, string(data)))
}

// Report handles GET /report: the aggregated validation report.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	dir, err := report.Collect(h.root, storage.DocExtensions, func(path string) rules.Result {
		rel := relTo(h.root, path)
		data, readErr := h.store.Read(rel)
		if readErr != nil {
			return rules.NewResult(rel, []rules.Finding{
				{Type: rules.SeverityError, Message: "file read failed: " + readErr.Error()},
			})
		}
		return h.CheckDocument(rel, string(data))
	})
	if err != nil {
		slog.Error("report failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, dir)
}

// Tokens handles GET /tokens: the full vs concise comparison report.
func (h *Handler) Tokens(w http.ResponseWriter, r *http.Request) {
	if h.calc == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("tokenizer unavailable"))
		return
	}
	results, err := h.calc.ScanDirectory(h.root, h.conciseDir)
	if err != nil {
		slog.Error("token scan failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if results == nil {
		results = []tokens.Comparison{}
	}
	writeJSON(w, http.StatusOK, tokens.ComparisonReport{
		Results: results,
		Summary: tokens.Summarize(results),
	})
}

func relTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
