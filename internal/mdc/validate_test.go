package mdc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/rulekit/internal/rules"
)

func hasMessage(fs []rules.Finding, substr string) bool {
	for _, f := range fs {
		if strings.Contains(f.Message, substr) {
			return true
		}
	}
	return false
}

func TestValidateContent_MinimalValid(t *testing.T) {
	content := "---\ndescription: General coding rules\nglobs:\n  - \"**/*.go\"\nalwaysApply: true\n---\n\n# Rules\nbody\n"
	r := ValidateContent("01-general.mdc", content)
	if !r.Valid {
		t.Fatalf("errors = %v", r.Errors)
	}
	if len(r.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", r.Warnings)
	}
}

func TestValidateContent_EmptyGlobsWarns(t *testing.T) {
	content := "---\ndescription: x\nglobs: []\nalwaysApply: true\n---\n\nbody"
	r := ValidateContent("a.mdc", content)
	if !r.Valid {
		t.Fatalf("empty globs must stay valid, errors = %v", r.Errors)
	}
	if !hasMessage(r.Warnings, "globs is an empty list") {
		t.Errorf("warnings = %v", r.Warnings)
	}
}

func TestValidateContent_MissingFrontmatter(t *testing.T) {
	r := ValidateContent("a.mdc", "# Just markdown\n")
	if r.Valid || !hasMessage(r.Errors, "missing frontmatter") {
		t.Errorf("result = %+v", r)
	}
}

func TestValidateContent_MalformedDelimiters(t *testing.T) {
	r := ValidateContent("a.mdc", "---\ndescription: x\n")
	if r.Valid || !hasMessage(r.Errors, "malformed frontmatter") {
		t.Errorf("result = %+v", r)
	}
}

func TestValidateContent_ParseErrorIsCaught(t *testing.T) {
	r := ValidateContent("a.mdc", "---\n: invalid: yaml: {{{\n---\nbody")
	if r.Valid {
		t.Fatal("expected invalid")
	}
	if !hasMessage(r.Errors, "YAML parse error") {
		t.Errorf("errors = %v", r.Errors)
	}
}

func TestValidateContent_NonMappingFrontmatter(t *testing.T) {
	r := ValidateContent("a.mdc", "---\n- just\n- a list\n---\nbody")
	if r.Valid || !hasMessage(r.Errors, "must be a YAML mapping") {
		t.Errorf("result = %+v", r)
	}
}

func TestValidateContent_MissingRequiredFields(t *testing.T) {
	r := ValidateContent("a.mdc", "---\ndescription: x\n---\nbody")
	if r.Valid {
		t.Fatal("expected invalid")
	}
	if !hasMessage(r.Errors, "missing required field: globs") {
		t.Errorf("errors = %v", r.Errors)
	}
	if !hasMessage(r.Errors, "missing required field: alwaysApply") {
		t.Errorf("errors = %v", r.Errors)
	}
}

func TestValidateContent_TypeMismatches(t *testing.T) {
	content := "---\ndescription: 42\nglobs: \"*.go\"\nalwaysApply: maybe\n---\nbody"
	r := ValidateContent("a.mdc", content)
	if r.Valid {
		t.Fatal("expected invalid")
	}
	for _, want := range []string{
		"description must be a string",
		"globs must be a list",
		"alwaysApply must be a boolean",
	} {
		if !hasMessage(r.Errors, want) {
			t.Errorf("errors = %v, want %q", r.Errors, want)
		}
	}
}

func TestValidateContent_AdvisoryFields(t *testing.T) {
	content := "---\ndescription: x\nglobs:\n  - \"**/*\"\nalwaysApply: false\ntags: []\nversion: v1\n---\nbody"
	r := ValidateContent("a.mdc", content)
	if !r.Valid {
		t.Fatalf("tags/version issues must never be errors: %v", r.Errors)
	}
	if !hasMessage(r.Warnings, "tags is an empty list") {
		t.Errorf("warnings = %v", r.Warnings)
	}
	if !hasMessage(r.Warnings, "MAJOR.MINOR.PATCH") {
		t.Errorf("warnings = %v", r.Warnings)
	}
}

func TestValidateContent_LongDescriptionWarns(t *testing.T) {
	content := "---\ndescription: " + strings.Repeat("x", 201) + "\nglobs:\n  - \"**/*\"\nalwaysApply: true\n---\nbody"
	r := ValidateContent("a.mdc", content)
	if !r.Valid {
		t.Fatalf("errors = %v", r.Errors)
	}
	if !hasMessage(r.Warnings, "exceeds 200 characters") {
		t.Errorf("warnings = %v", r.Warnings)
	}
}

func TestValidateContent_EmptyBodyWarns(t *testing.T) {
	content := "---\ndescription: x\nglobs:\n  - \"**/*\"\nalwaysApply: true\n---\n\n  \n"
	r := ValidateContent("a.mdc", content)
	if !r.Valid {
		t.Fatalf("errors = %v", r.Errors)
	}
	if !hasMessage(r.Warnings, "content body is empty") {
		t.Errorf("warnings = %v", r.Warnings)
	}
}

func TestValidateFile_WrongExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rule.md")
	if err := os.WriteFile(path, []byte("---\n---\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := ValidateFile(path)
	if r.Valid || !hasMessage(r.Errors, "not .mdc") {
		t.Errorf("result = %+v", r)
	}
}

func TestValidateFile_Missing(t *testing.T) {
	r := ValidateFile(filepath.Join(t.TempDir(), "absent.mdc"))
	if r.Valid || !hasMessage(r.Errors, "does not exist") {
		t.Errorf("result = %+v", r)
	}
}

func TestSplitAndBody(t *testing.T) {
	content := "---\ndescription: x\n---\n\n# Body\ntext\n"
	front, body, err := Split(content)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if front != "description: x" {
		t.Errorf("front = %q", front)
	}
	if strings.TrimSpace(body) != "# Body\ntext" {
		t.Errorf("body = %q", body)
	}
	if Body(content) != "# Body\ntext" {
		t.Errorf("Body = %q", Body(content))
	}
	// No frontmatter: whole content is body.
	if Body("plain\n") != "plain" {
		t.Errorf("Body(plain) = %q", Body("plain\n"))
	}
}

func TestRender_RoundTrip(t *testing.T) {
	meta := Metadata{
		Description: "General rules",
		Globs:       []string{"**/*.go"},
		AlwaysApply: true,
		Tags:        []string{"general"},
		Version:     "1.0.0",
	}
	doc, err := Render(meta, "# Rules\nbody\n")
	if err != nil {
		t.Fatal(err)
	}
	r := ValidateContent("01-general.mdc", doc)
	if !r.Valid || len(r.Warnings) != 0 {
		t.Errorf("rendered document should validate cleanly: %+v", r)
	}
}
