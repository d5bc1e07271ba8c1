// Package migrate converts .md rule files to .mdc by synthesizing
// frontmatter from the file name and content. The source .md file is
// removed after a successful conversion.
package migrate

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/starford/rulekit/internal/mdc"
)

// Author stamped into synthesized frontmatter.
const Author = "ai-coding-rules-team"

// initialVersion for newly migrated rules.
const initialVersion = "1.0.0"

var numericPrefixRe = regexp.MustCompile(`^\d+-`)

// Migrator converts rule files in place.
type Migrator struct {
	dryRun bool
	force  bool
	log    *slog.Logger
}

// New builds a migrator. dryRun reports planned conversions without
// touching files; force overwrites an existing .mdc target.
func New(dryRun, force bool, log *slog.Logger) *Migrator {
	if log == nil {
		log = slog.Default()
	}
	return &Migrator{dryRun: dryRun, force: force, log: log}
}

// InferMetadata synthesizes frontmatter for a rule file. The file name
// stem drives glob and apply inference; tags also consider the content.
func InferMetadata(path, content string) mdc.Metadata {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	lower := strings.ToLower(stem)

	return mdc.Metadata{
		Description: inferDescription(stem, content),
		Globs:       inferGlobs(lower),
		AlwaysApply: inferAlwaysApply(lower),
		Tags:        inferTags(lower, strings.ToLower(content)),
		Version:     initialVersion,
		Author:      Author,
	}
}

func inferDescription(stem, content string) string {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) > 0 && strings.HasPrefix(lines[0], "#") {
		if title := strings.TrimSpace(strings.TrimLeft(lines[0], "#")); title != "" {
			return title
		}
	}
	name := numericPrefixRe.ReplaceAllString(stem, "")
	name = titleCase(strings.ReplaceAll(name, "-", " "))
	return name + " rules"
}

func inferGlobs(stem string) []string {
	switch {
	case strings.Contains(stem, "python") || strings.Contains(stem, "fastapi"):
		return []string{"**/*.py"}
	case strings.Contains(stem, "react"):
		return []string{"**/*.tsx", "**/*.jsx"}
	case strings.Contains(stem, "vue"):
		return []string{"**/*.vue"}
	case strings.Contains(stem, "typescript") || strings.Contains(stem, "ts"):
		return []string{"**/*.ts", "**/*.tsx"}
	case strings.Contains(stem, "javascript") || strings.Contains(stem, "js"):
		return []string{"**/*.js", "**/*.jsx"}
	case strings.Contains(stem, "general") || strings.Contains(stem, "meta"):
		return []string{"**/*"}
	case strings.Contains(stem, "testing") || strings.Contains(stem, "test"):
		return []string{"**/*test*.py", "**/*test*.ts", "**/*test*.js"}
	case strings.Contains(stem, "security"):
		return []string{"**/*"}
	default:
		return []string{"**/*"}
	}
}

func inferAlwaysApply(stem string) bool {
	for _, kw := range []string{"general", "meta", "security"} {
		if strings.Contains(stem, kw) {
			return true
		}
	}
	return false
}

func inferTags(stem, content string) []string {
	var tags []string
	add := func(tag string, hit bool) {
		if hit {
			tags = append(tags, tag)
		}
	}
	add("python", strings.Contains(stem, "python") || strings.Contains(content, "python"))
	add("typescript", strings.Contains(stem, "typescript") || strings.Contains(content, "typescript") || strings.Contains(stem, "ts"))
	add("javascript", strings.Contains(stem, "javascript") || strings.Contains(content, "javascript") || strings.Contains(stem, "js"))
	add("react", strings.Contains(stem, "react") || strings.Contains(content, "react"))
	add("vue", strings.Contains(stem, "vue") || strings.Contains(content, "vue"))
	add("fastapi", strings.Contains(stem, "fastapi") || strings.Contains(content, "fastapi"))
	add("testing", strings.Contains(stem, "test"))
	add("security", strings.Contains(stem, "security") || strings.Contains(content, "security"))
	add("general", strings.Contains(stem, "general") || strings.Contains(stem, "meta"))
	add("coding-standards", strings.Contains(stem, "coding-standards") || strings.Contains(content, "coding-standards"))
	if len(tags) == 0 {
		tags = []string{"general"}
	}
	return tags
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Convert produces the .mdc target path and content for an .md source.
// Content that already carries frontmatter is kept verbatim.
func Convert(path, content string) (string, string, error) {
	target := strings.TrimSuffix(path, filepath.Ext(path)) + ".mdc"
	if strings.HasPrefix(content, mdc.Delimiter) {
		return target, content, nil
	}
	doc, err := mdc.Render(InferMetadata(path, content), content)
	if err != nil {
		return "", "", fmt.Errorf("migrate: render %s: %w", path, err)
	}
	return target, doc, nil
}

// File migrates one .md file. The bool reports whether a conversion
// happened (or would happen, in dry-run mode); skips return false with
// no error.
func (m *Migrator) File(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		return false, fmt.Errorf("migrate: %s: %w", path, err)
	}
	if filepath.Ext(path) != ".md" {
		m.log.Info("skipping non-markdown file", "path", path)
		return false, nil
	}

	target := strings.TrimSuffix(path, ".md") + ".mdc"
	if _, err := os.Stat(target); err == nil && !m.force {
		m.log.Info("skipping, target exists (use force to overwrite)", "path", target)
		return false, nil
	}

	if m.dryRun {
		m.log.Info("would convert", "from", path, "to", target)
		return true, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("migrate: read %s: %w", path, err)
	}
	_, content, err := Convert(path, string(data))
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("migrate: write %s: %w", target, err)
	}
	if err := os.Remove(path); err != nil {
		return false, fmt.Errorf("migrate: remove %s: %w", path, err)
	}
	m.log.Info("converted", "from", path, "to", target)
	return true, nil
}

// Directory migrates every .md file under root, skipping README files,
// docs trees, and leftover backups. Returns converted and failed counts.
func (m *Migrator) Directory(root string) (int, int, error) {
	var converted, failed int
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || filepath.Ext(path) != ".md" {
			return nil
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".backup") || name == "README.md" {
			return nil
		}
		if containsSegment(path, "docs") {
			return nil
		}

		ok, err := m.File(path)
		if err != nil {
			m.log.Error("conversion failed", "path", path, "error", err)
			failed++
			return nil
		}
		if ok {
			converted++
		} else {
			failed++
		}
		return nil
	})
	if err != nil {
		return converted, failed, fmt.Errorf("migrate: walk %s: %w", root, err)
	}
	return converted, failed, nil
}

func containsSegment(path, want string) bool {
	for _, p := range strings.Split(filepath.ToSlash(path), "/") {
		if p == want {
			return true
		}
	}
	return false
}
