package rules

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/starford/rulekit/internal/mdscan"
)

// Filename format: two-digit numeric prefix, hyphen, lowercase
// alphanumeric/hyphen body, .md or .mdc extension.
var filenameRe = regexp.MustCompile(`^\d{2}-[a-z0-9-]+\.(mdc|md)$`)

// goodBadRe matches comment-style Good/Bad annotations in code examples.
var goodBadRe = regexp.MustCompile(`(?i)(//|#)\s*(Good|Bad|✅|❌)`)

// Limits bounds the structural checks. Zero values fall back to defaults.
type Limits struct {
	MaxHeadingLevel int // deeper headings are errors (default 4)
	MaxConciseLines int // longer concise files warn (default 150)
}

const (
	defaultMaxHeadingLevel = 4
	defaultMaxConciseLines = 150
)

func (l Limits) headingLevel() int {
	if l.MaxHeadingLevel > 0 {
		return l.MaxHeadingLevel
	}
	return defaultMaxHeadingLevel
}

func (l Limits) conciseLines() int {
	if l.MaxConciseLines > 0 {
		return l.MaxConciseLines
	}
	return defaultMaxConciseLines
}

// CheckFilename validates the base name of candidate rule files.
func CheckFilename(path string, c Classification) []Finding {
	if !c.Candidate {
		return nil
	}
	name := filepath.Base(path)
	if !filenameRe.MatchString(name) {
		return []Finding{errorf(
			"invalid file name: %s (expected two-digit-prefix-lowercase-hyphens.md or .mdc)", name)}
	}
	return nil
}

// CheckHeadingDepth flags each heading deeper than the maximum as an error
// and each heading at the maximum as a nesting warning, in document order.
func CheckHeadingDepth(headings []mdscan.Heading, limits Limits) []Finding {
	maxLevel := limits.headingLevel()
	var out []Finding
	for _, h := range headings {
		switch {
		case h.Level > maxLevel:
			out = append(out, errorf(
				"heading level too deep: %s (at most %d levels allowed)", h.Title, maxLevel))
		case h.Level > maxLevel-1:
			out = append(out, warningf(
				"deeply nested heading: %s (consider staying within %d levels)", h.Title, maxLevel-1))
		}
	}
	return out
}

// CheckHeadingSkip flags level increases of more than one step. The first
// heading is compared against level 0, so a document opening at level 2 or
// deeper is itself a skip. Decreases of any size are legal.
func CheckHeadingSkip(headings []mdscan.Heading) []Finding {
	var out []Finding
	previous := 0
	for _, h := range headings {
		if h.Level > previous+1 {
			out = append(out, errorf("heading level skip: %s → %s (levels must not be skipped)",
				hashes(previous), hashes(h.Level)))
		}
		previous = h.Level
	}
	return out
}

func hashes(level int) string {
	if level == 0 {
		return "(start)"
	}
	return strings.Repeat("#", level)
}

// CheckFenceLanguages emits one aggregated error naming the 1-based
// positions of untagged fenced blocks, capped at five positions.
func CheckFenceLanguages(languages []string) []Finding {
	var positions []string
	for i, lang := range languages {
		if lang == "" {
			positions = append(positions, strconv.Itoa(i+1))
		}
	}
	if len(positions) == 0 {
		return nil
	}
	if len(positions) > 5 {
		positions = positions[:5]
	}
	return []Finding{errorf("code blocks missing language tag (positions: %s)",
		strings.Join(positions, ", "))}
}

// CheckExamples enforces example density and Good/Bad annotations on full
// rule documents. Concise variants are waived entirely.
func CheckExamples(content string, blockCount int, c Classification) []Finding {
	if c.Concise {
		return nil
	}
	var out []Finding
	switch {
	case blockCount == 0:
		out = append(out, errorf("missing code examples (at least 1 required)"))
	case blockCount < 2:
		out = append(out, warningf("few code examples (%d found, at least 2 recommended)", blockCount))
	}
	if blockCount > 0 && !goodBadRe.MatchString(content) {
		out = append(out, warningf("code examples lack Good/Bad annotations"))
	}
	return out
}

// CheckConciseLength warns when a concise variant exceeds the line ceiling.
func CheckConciseLength(content string, c Classification, limits Limits) []Finding {
	if !c.Concise {
		return nil
	}
	lines := mdscan.LineCount(content)
	if lines > limits.conciseLines() {
		return []Finding{warningf("concise file too long (%d lines, fewer than %d recommended)",
			lines, limits.conciseLines())}
	}
	return nil
}
