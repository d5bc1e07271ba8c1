// Package mdscan extracts structural facts (headings, code fences, line
// counts) from raw Markdown text.
package mdscan

import (
	"regexp"
	"strings"
)

var (
	// fullFenceRe matches a complete fenced block, opening fences of three
	// or more backticks included, so nothing inside contributes headings.
	fullFenceRe = regexp.MustCompile("(?s)`{3,}[^\n]*\n.*?`{3,}")

	headingRe = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)

	// fenceRe matches one complete fenced block and captures the language
	// tag on the opening fence line, if any.
	fenceRe = regexp.MustCompile("(?s)```(\\w+)?\n.*?```")
)

// Heading is one Markdown heading in document order.
type Heading struct {
	Level int
	Title string
}

// StripFences removes every fenced code block from text. Heading analysis
// must run on the stripped text so example code never produces headings.
func StripFences(text string) string {
	return fullFenceRe.ReplaceAllString(text, "")
}

// Headings returns the headings of text in document order. Callers that
// want real headings only should pass fence-stripped text.
func Headings(text string) []Heading {
	matches := headingRe.FindAllStringSubmatch(text, -1)
	out := make([]Heading, 0, len(matches))
	for _, m := range matches {
		out = append(out, Heading{Level: len(m[1]), Title: strings.TrimSpace(m[2])})
	}
	return out
}

// FenceLanguages returns one entry per fenced block in document order: the
// language tag on the opening fence, or "" when the block is untagged.
// It operates on the raw text; the fence lines themselves are the subject.
func FenceLanguages(text string) []string {
	matches := fenceRe.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// LineCount reports the number of lines in text, ignoring a trailing
// newline (mirrors splitlines semantics rather than strings.Split).
func LineCount(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
