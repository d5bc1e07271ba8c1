package mdc

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/rulekit/internal/rules"
)

const maxDescriptionLen = 200

var requiredFields = []string{"description", "globs", "alwaysApply"}

var semverRe = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// ValidateContent checks the frontmatter schema of an MDC document.
// Delimiter and parse failures terminate validation; schema violations
// accumulate. A YAML parse failure is converted into a finding, never
// surfaced as a fault.
func ValidateContent(path, content string) rules.Result {
	if !HasFrontmatter(content) {
		return result(path, finding(rules.SeverityError, "missing frontmatter (file must start with '---')"))
	}

	parts := strings.SplitN(content, Delimiter, 3)
	if len(parts) < 3 {
		return result(path, finding(rules.SeverityError, "malformed frontmatter (two '---' delimiters required)"))
	}

	var raw any
	if err := yaml.Unmarshal([]byte(parts[1]), &raw); err != nil {
		return result(path, finding(rules.SeverityError, fmt.Sprintf("YAML parse error: %v", err)))
	}
	meta, ok := raw.(map[string]any)
	switch {
	case raw == nil:
		// Empty frontmatter: treat as a mapping with no keys so every
		// required field is reported missing.
		meta = map[string]any{}
	case !ok:
		// A scalar or list document is not a valid frontmatter block.
		return result(path, finding(rules.SeverityError, "frontmatter must be a YAML mapping"))
	}

	var findings []rules.Finding
	for _, field := range requiredFields {
		if _, ok := meta[field]; !ok {
			findings = append(findings, finding(rules.SeverityError, "missing required field: "+field))
		}
	}

	if v, ok := meta["description"]; ok {
		if s, isStr := v.(string); !isStr {
			findings = append(findings, finding(rules.SeverityError, "description must be a string"))
		} else if len([]rune(s)) > maxDescriptionLen {
			findings = append(findings, finding(rules.SeverityWarning,
				fmt.Sprintf("description exceeds %d characters, consider shortening", maxDescriptionLen)))
		}
	}

	if v, ok := meta["globs"]; ok {
		if list, isList := v.([]any); !isList {
			findings = append(findings, finding(rules.SeverityError, "globs must be a list"))
		} else if len(list) == 0 {
			findings = append(findings, finding(rules.SeverityWarning, "globs is an empty list"))
		}
	}

	if v, ok := meta["alwaysApply"]; ok {
		if _, isBool := v.(bool); !isBool {
			findings = append(findings, finding(rules.SeverityError, "alwaysApply must be a boolean"))
		}
	}

	if v, ok := meta["tags"]; ok {
		if list, isList := v.([]any); !isList {
			findings = append(findings, finding(rules.SeverityWarning, "tags should be a list"))
		} else if len(list) == 0 {
			findings = append(findings, finding(rules.SeverityWarning, "tags is an empty list"))
		}
	}

	if v, ok := meta["version"]; ok {
		if s, isStr := v.(string); !isStr {
			findings = append(findings, finding(rules.SeverityWarning, "version should be a string"))
		} else if !semverRe.MatchString(s) {
			findings = append(findings, finding(rules.SeverityWarning,
				fmt.Sprintf("version does not look like MAJOR.MINOR.PATCH: %s", s)))
		}
	}

	if strings.TrimSpace(parts[2]) == "" {
		findings = append(findings, finding(rules.SeverityWarning, "content body is empty"))
	}

	return rules.NewResult(path, findings)
}

// ValidateFile reads and validates one .mdc file. All failures are
// reported as findings; a sweep over a directory never aborts.
func ValidateFile(path string) rules.Result {
	if _, err := os.Stat(path); err != nil {
		return result(path, finding(rules.SeverityError, fmt.Sprintf("file does not exist: %s", path)))
	}
	if filepath.Ext(path) != ".mdc" {
		return result(path, finding(rules.SeverityError, fmt.Sprintf("file extension is not .mdc: %s", path)))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return result(path, finding(rules.SeverityError, fmt.Sprintf("failed to read file: %v", err)))
	}
	return ValidateContent(path, string(data))
}

func finding(sev rules.Severity, msg string) rules.Finding {
	return rules.Finding{Type: sev, Message: msg}
}

func result(path string, f rules.Finding) rules.Result {
	return rules.NewResult(path, []rules.Finding{f})
}
