// Package rules implements the structural conventions for rule documents:
// path classification, the predicate checks, and per-file results.
package rules

import "fmt"

// Severity is the closed set of finding severities. Downstream scoring
// relies on exactly these two variants.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one reported issue.
type Finding struct {
	Type    Severity `json:"type"`
	Message string   `json:"message"`
}

// Result is the validation outcome for one file. Valid is true iff Errors
// is empty; warnings never affect validity.
type Result struct {
	File     string    `json:"file"`
	Valid    bool      `json:"valid"`
	Errors   []Finding `json:"errors"`
	Warnings []Finding `json:"warnings"`
}

// NewResult builds a Result from accumulated findings, splitting them by
// severity while preserving order.
func NewResult(file string, findings []Finding) Result {
	r := Result{File: file, Errors: []Finding{}, Warnings: []Finding{}}
	for _, f := range findings {
		if f.Type == SeverityError {
			r.Errors = append(r.Errors, f)
		} else {
			r.Warnings = append(r.Warnings, f)
		}
	}
	r.Valid = len(r.Errors) == 0
	return r
}

func errorf(format string, args ...any) Finding {
	return Finding{Type: SeverityError, Message: fmt.Sprintf(format, args...)}
}

func warningf(format string, args ...any) Finding {
	return Finding{Type: SeverityWarning, Message: fmt.Sprintf(format, args...)}
}
