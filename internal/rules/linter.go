package rules

import (
	"os"

	"github.com/starford/rulekit/internal/mdscan"
)

// Linter runs the full predicate set over rule documents.
type Linter struct {
	limits Limits
}

// NewLinter creates a Linter with the given limits (zero values use the
// built-in defaults).
func NewLinter(limits Limits) *Linter {
	return &Linter{limits: limits}
}

// CheckContent validates in-memory content against the predicate set.
// Findings follow the fixed order: filename, heading depth, heading skip,
// fence languages, examples, concise length.
func (l *Linter) CheckContent(path string, content string) Result {
	c := Classify(path)
	if c.Exempt {
		return NewResult(path, nil)
	}

	var findings []Finding
	findings = append(findings, CheckFilename(path, c)...)

	headings := mdscan.Headings(mdscan.StripFences(content))
	findings = append(findings, CheckHeadingDepth(headings, l.limits)...)
	findings = append(findings, CheckHeadingSkip(headings)...)

	languages := mdscan.FenceLanguages(content)
	findings = append(findings, CheckFenceLanguages(languages)...)
	findings = append(findings, CheckExamples(content, len(languages), c)...)
	findings = append(findings, CheckConciseLength(content, c, l.limits)...)

	return NewResult(path, findings)
}

// CheckFile reads and validates one file. Read failures become error
// findings rather than aborting a sweep.
func (l *Linter) CheckFile(path string) Result {
	if _, err := os.Stat(path); err != nil {
		return NewResult(path, []Finding{errorf("file does not exist: %s", path)})
	}

	c := Classify(path)
	if c.Exempt {
		return NewResult(path, nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return NewResult(path, []Finding{errorf("failed to read file: %v", err)})
	}
	return l.CheckContent(path, string(data))
}

// Limits returns the active limits, for callers that surface them.
func (l *Linter) Limits() Limits {
	return l.limits
}
