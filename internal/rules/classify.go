package rules

import (
	"path/filepath"
	"strings"
)

// candidateKeywords are the directory names that mark a tree as holding
// rule files. Matching is per path segment, never substring-of-whole-path.
// Changing the set changes which files get the filename check.
var candidateKeywords = []string{"rulesets", "rules", "coderules"}

// ConciseMarker is the directory segment identifying concise rule variants.
const ConciseMarker = ".concise-rules"

// Classification is the outcome of path classification.
type Classification struct {
	// Exempt files (README.md, anything under a docs segment) skip every
	// structural check and report as vacuously valid.
	Exempt bool
	// Candidate rule files are subject to the filename pattern check.
	Candidate bool
	// Concise variants are exempt from example-density checks but subject
	// to the line-count ceiling.
	Concise bool
}

// Classify decides how the checks apply to path.
func Classify(path string) Classification {
	segments := splitSegments(path)

	c := Classification{}
	if filepath.Base(path) == "README.md" {
		c.Exempt = true
		return c
	}
	for _, seg := range segments {
		if seg == "docs" {
			c.Exempt = true
			return c
		}
	}

	for _, seg := range segments {
		if seg == ConciseMarker {
			c.Concise = true
		}
		for _, kw := range candidateKeywords {
			if seg == kw {
				c.Candidate = true
			}
		}
	}
	return c
}

func splitSegments(path string) []string {
	return strings.Split(filepath.ToSlash(path), "/")
}
