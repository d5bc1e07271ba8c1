// Package mdc handles the MDC document format: a YAML frontmatter block
// between "---" delimiters followed by a Markdown body.
package mdc

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/rulekit/internal/apperr"
)

// Delimiter is the frontmatter marker line.
const Delimiter = "---"

// Metadata is the frontmatter schema. Field order matters when the block
// is synthesized during migration, hence a struct rather than a map.
type Metadata struct {
	Description string   `yaml:"description"`
	Globs       []string `yaml:"globs"`
	AlwaysApply bool     `yaml:"alwaysApply"`
	Tags        []string `yaml:"tags,omitempty"`
	Version     string   `yaml:"version,omitempty"`
	Author      string   `yaml:"author,omitempty"`
}

// Render produces a complete MDC document from metadata and body.
func Render(meta Metadata, body string) (string, error) {
	block, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("mdc: marshal frontmatter: %w", err)
	}
	return Delimiter + "\n" + strings.TrimRight(string(block), "\n") + "\n" + Delimiter + "\n\n" + body, nil
}

// HasFrontmatter reports whether content opens with the delimiter line.
func HasFrontmatter(content string) bool {
	return strings.HasPrefix(content, Delimiter)
}

// Split separates content into the raw frontmatter block and the body.
// It fails when content does not start with the delimiter or the closing
// delimiter is missing.
func Split(content string) (front, body string, err error) {
	if !HasFrontmatter(content) {
		return "", "", fmt.Errorf("mdc: missing frontmatter: %w", apperr.ErrMetadataParse)
	}
	parts := strings.SplitN(content, Delimiter, 3)
	if len(parts) < 3 {
		return "", "", fmt.Errorf("mdc: missing closing delimiter: %w", apperr.ErrMetadataParse)
	}
	return strings.TrimSpace(parts[1]), parts[2], nil
}

// Body returns content with any frontmatter block removed and surrounding
// whitespace trimmed. Content without frontmatter is returned as-is
// (trimmed), matching the token-accounting contract.
func Body(content string) string {
	_, body, err := Split(content)
	if err != nil {
		return strings.TrimSpace(content)
	}
	return strings.TrimSpace(body)
}
