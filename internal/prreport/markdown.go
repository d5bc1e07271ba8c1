package prreport

import (
	"fmt"
	"strings"
)

// maxWarningsShown caps the warning list in the rendered report.
const maxWarningsShown = 5

// Markdown renders the report for posting as a PR comment.
func Markdown(r Report) string {
	var b strings.Builder

	badge := "❌"
	switch {
	case r.QualityScore >= 80:
		badge = "✅"
	case r.QualityScore >= FailThreshold:
		badge = "⚠️"
	}

	fmt.Fprintf(&b, "# 📊 PR Quality Report\n\n")
	fmt.Fprintf(&b, "%s **Quality score**: %d/100\n\n---\n\n", badge, r.QualityScore)

	fmt.Fprintf(&b, "## 📝 Changed Files\n\n")
	fmt.Fprintf(&b, "- **Added**: %d\n", len(r.ChangedFiles.Added))
	fmt.Fprintf(&b, "- **Modified**: %d\n", len(r.ChangedFiles.Modified))
	fmt.Fprintf(&b, "- **Deleted**: %d\n\n", len(r.ChangedFiles.Deleted))

	writeRuleSection(&b, r.RuleCheck)
	writeDocSection(&b, r.DocumentationCheck)
	writeTokenSection(&b, r.TokenCheck)
	writeSuggestions(&b, r)

	b.WriteString("---\n\n*Generated by the PR quality gate*\n")
	return b.String()
}

func writeRuleSection(b *strings.Builder, rc RuleCheck) {
	if !rc.HasRules {
		b.WriteString("## ℹ️ Rule Validation\n\nNo rule file changes detected.\n\n")
		return
	}

	status := "✅ passed"
	if !rc.Valid {
		status = "❌ failed"
	}
	fmt.Fprintf(b, "## ✅ Rule Validation\n\n")
	fmt.Fprintf(b, "- **Rule files**: %d\n", rc.Count)
	fmt.Fprintf(b, "- **Status**: %s\n\n", status)

	if len(rc.Errors) > 0 {
		b.WriteString("### ❌ Errors\n\n")
		for _, e := range rc.Errors {
			fmt.Fprintf(b, "- %s\n", e.Message)
		}
		b.WriteString("\n")
	}
	if len(rc.Warnings) > 0 {
		b.WriteString("### ⚠️ Warnings\n\n")
		shown := rc.Warnings
		if len(shown) > maxWarningsShown {
			shown = shown[:maxWarningsShown]
		}
		for _, w := range shown {
			fmt.Fprintf(b, "- %s\n", w.Message)
		}
		b.WriteString("\n")
	}
}

func writeDocSection(b *strings.Builder, dc DocCheck) {
	b.WriteString("## 📚 Documentation Check\n\n")
	if !dc.HasRuleChanges {
		b.WriteString("No rule changes detected, no documentation update needed.\n\n")
		return
	}
	status := "⚠️ not updated"
	if dc.DocsUpdated {
		status = "✅ updated"
	}
	fmt.Fprintf(b, "- **Status**: %s\n", status)
	fmt.Fprintf(b, "- **Recommendation**: %s\n\n", dc.Recommendation)
}

func writeTokenSection(b *strings.Builder, tc TokenCheck) {
	b.WriteString("## 🎯 Token Consumption\n\n")
	if !tc.Checked {
		msg := tc.Message
		if msg == "" {
			msg = "no full rule changes detected"
		}
		fmt.Fprintf(b, "ℹ️ %s\n\n", msg)
		return
	}

	badge := "⚠️"
	status := "⚠️ below target"
	if tc.MeetsTarget {
		badge = "✅"
		status = "✅ on target"
	}
	fmt.Fprintf(b, "%s **Average reduction**: %.2f%%\n", badge, tc.AvgReduction)
	fmt.Fprintf(b, "- **Target**: ≥ 70%%\n")
	fmt.Fprintf(b, "- **Status**: %s\n", status)
	fmt.Fprintf(b, "- **Files on target**: %d/%d\n\n", tc.MeetsTargetCount, tc.TotalFiles)
}

func writeSuggestions(b *strings.Builder, r Report) {
	var suggestions []string
	if r.RuleCheck.HasRules && !r.RuleCheck.Valid {
		suggestions = append(suggestions, "Fix the errors in the rule files")
	}
	if r.DocumentationCheck.HasRuleChanges && !r.DocumentationCheck.DocsUpdated {
		suggestions = append(suggestions, "Update CHANGELOG.md to record the change")
	}
	if r.TokenCheck.Checked && !r.TokenCheck.MeetsTarget {
		suggestions = append(suggestions, "Tighten the concise rules to cut token consumption")
	}
	if len(suggestions) == 0 {
		return
	}

	b.WriteString("## 💡 Suggestions\n\n")
	for i, s := range suggestions {
		fmt.Fprintf(b, "%d. %s\n", i+1, s)
	}
	b.WriteString("\n")
}
