package rules

import "testing"

func TestClassify_ReadmeExempt(t *testing.T) {
	c := Classify("rulesets/README.md")
	if !c.Exempt {
		t.Error("README.md should be exempt")
	}
}

func TestClassify_DocsSegmentExempt(t *testing.T) {
	for _, p := range []string{"docs/guide.md", "full-rules/docs/01-x.md"} {
		if c := Classify(p); !c.Exempt {
			t.Errorf("%s should be exempt", p)
		}
	}
}

func TestClassify_DocsSubstringNotExempt(t *testing.T) {
	// Matching is per segment; "mydocs" must not trigger the exemption.
	if c := Classify("mydocs/01-general.md"); c.Exempt {
		t.Error("mydocs segment must not be treated as docs")
	}
}

func TestClassify_CandidateKeywords(t *testing.T) {
	cases := map[string]bool{
		"rulesets/01-general.md":           true,
		"ide-layer/rules/02-naming.mdc":    true,
		"coderules/03-security.md":         true,
		"guides/01-general.md":             false,
		"my-rulesets-copy/01-general.md":   false, // substring, not a segment
		"deep/nested/rulesets/04-tests.md": true,
	}
	for path, want := range cases {
		if got := Classify(path).Candidate; got != want {
			t.Errorf("Classify(%q).Candidate = %v, want %v", path, got, want)
		}
	}
}

func TestClassify_ConciseMarker(t *testing.T) {
	if !Classify(".concise-rules/ide-layer/01-general.mdc").Concise {
		t.Error("expected concise classification")
	}
	if Classify("full-rules/ide-layer/rulesets/01-general.mdc").Concise {
		t.Error("full rules must not classify as concise")
	}
}
