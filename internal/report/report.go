// Package report aggregates per-file validation results and renders them
// as plain text or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/starford/rulekit/internal/apperr"
	"github.com/starford/rulekit/internal/rules"
)

// CheckFunc validates one file and reports findings.
type CheckFunc func(path string) rules.Result

// Summary counts the outcome of a directory sweep.
type Summary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// Directory is the aggregated result of validating a directory tree.
type Directory struct {
	Results []rules.Result `json:"results"`
	Summary Summary        `json:"summary"`
}

// Valid reports whether every file in the sweep passed.
func (d Directory) Valid() bool {
	return d.Summary.Failed == 0
}

// Collect walks root, applies check to every file whose extension is in
// exts, and aggregates the results. Exempt files appear as vacuously valid
// entries rather than being absent. Per-file failures never abort the
// sweep; they surface as error findings on that file.
func Collect(root string, exts []string, check CheckFunc) (Directory, error) {
	d := Directory{Results: []rules.Result{}}

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !hasExt(path, exts) {
			return nil
		}
		d.add(check(path))
		return nil
	})
	if err != nil {
		return Directory{}, fmt.Errorf("report: walk %s: %w", root, err)
	}
	if d.Summary.Total == 0 {
		return Directory{}, fmt.Errorf("report: no applicable files under %s: %w", root, apperr.ErrPathNotFound)
	}
	return d, nil
}

// CollectPath validates a single file or a whole directory, depending on
// what path points at.
func CollectPath(path string, exts []string, check CheckFunc) (Directory, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Directory{}, fmt.Errorf("report: %s: %w", path, apperr.ErrPathNotFound)
	}
	if info.IsDir() {
		return Collect(path, exts, check)
	}
	d := Directory{Results: []rules.Result{}}
	d.add(check(path))
	return d, nil
}

func (d *Directory) add(r rules.Result) {
	d.Results = append(d.Results, r)
	d.Summary.Total++
	if r.Valid {
		d.Summary.Passed++
	} else {
		d.Summary.Failed++
	}
}

func hasExt(path string, exts []string) bool {
	ext := filepath.Ext(path)
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// RenderResult writes the line-oriented report for one file.
func RenderResult(w io.Writer, r rules.Result) {
	if r.Valid {
		fmt.Fprintf(w, "✓ %s passed\n", r.File)
	} else {
		fmt.Fprintf(w, "✗ %s failed\n", r.File)
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  error: %s\n", e.Message)
		}
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn.Message)
	}
}

// RenderDirectory writes per-file lines followed by a summary.
func RenderDirectory(w io.Writer, d Directory) {
	for _, r := range d.Results {
		if !r.Valid || len(r.Warnings) > 0 {
			RenderResult(w, r)
		}
	}
	fmt.Fprintf(w, "\nvalidation complete: %d passed, %d failed\n",
		d.Summary.Passed, d.Summary.Failed)
}

// WriteJSON writes v indented, matching the structured report contract.
func WriteJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("report: marshal: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
