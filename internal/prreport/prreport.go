// Package prreport assembles a PR quality report from the rule linter,
// the token calculator, and git diff, and scores the change set.
package prreport

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/starford/rulekit/internal/gitdiff"
	"github.com/starford/rulekit/internal/rules"
	"github.com/starford/rulekit/internal/tokens"
)

// FailThreshold is the score below which the quality gate fails.
const FailThreshold = 60

// RuleCheck reports validation of the changed rule files.
type RuleCheck struct {
	HasRules bool            `json:"has_rules"`
	Count    int             `json:"count"`
	Files    []string        `json:"files"`
	Errors   []rules.Finding `json:"errors,omitempty"`
	Warnings []rules.Finding `json:"warnings,omitempty"`
	Valid    bool            `json:"valid"`
}

// DocCheck reports whether rule changes came with documentation updates.
type DocCheck struct {
	HasRuleChanges bool   `json:"has_rule_changes"`
	DocsUpdated    bool   `json:"docs_updated"`
	Recommendation string `json:"recommendation"`
}

// TokenCheck reports the concise-variant token reduction for the change.
type TokenCheck struct {
	Checked          bool    `json:"checked"`
	Message          string  `json:"message,omitempty"`
	TotalFiles       int     `json:"total_files,omitempty"`
	AvgReduction     float64 `json:"avg_reduction,omitempty"`
	MeetsTargetCount int     `json:"meets_target_count,omitempty"`
	MeetsTarget      bool    `json:"meets_target,omitempty"`
}

// Report is the full PR quality report.
type Report struct {
	ChangedFiles       gitdiff.Changes `json:"changed_files"`
	RuleCheck          RuleCheck       `json:"rule_check"`
	DocumentationCheck DocCheck        `json:"documentation_check"`
	TokenCheck         TokenCheck      `json:"token_check"`
	QualityScore       int             `json:"quality_score"`
}

// Passed reports whether the change clears the quality gate.
func (r Report) Passed() bool {
	return r.QualityScore >= FailThreshold
}

// Generator wires the collaborating checkers together.
type Generator struct {
	linter     *rules.Linter
	calc       *tokens.Calculator
	fullDir    string
	conciseDir string
	target     float64
}

// NewGenerator builds a report generator. fullDir and conciseDir locate
// the full and concise rule trees; target is the reduction percentage
// the change must average. calc may be nil when no tokenizer is
// available; the token check then reports as unchecked.
func NewGenerator(linter *rules.Linter, calc *tokens.Calculator, fullDir, conciseDir string, target float64) *Generator {
	if target <= 0 {
		target = tokens.DefaultReductionTarget
	}
	return &Generator{
		linter:     linter,
		calc:       calc,
		fullDir:    fullDir,
		conciseDir: conciseDir,
		target:     target,
	}
}

// Generate diffs base..head and runs all checks on the result.
func (g *Generator) Generate(ctx context.Context, base, head string) (Report, error) {
	changes, err := gitdiff.Diff(ctx, base, head)
	if err != nil {
		return Report{}, fmt.Errorf("prreport: %w", err)
	}

	r := Report{
		ChangedFiles:       changes,
		RuleCheck:          g.checkRules(changes),
		DocumentationCheck: g.checkDocs(changes),
		TokenCheck:         g.checkTokens(changes),
	}
	r.QualityScore = Score(r.RuleCheck, r.DocumentationCheck, r.TokenCheck)
	return r, nil
}

// isRuleFile mirrors the change-set filter: markdown files outside the
// README and docs trees.
func isRuleFile(path string) bool {
	if !strings.HasSuffix(path, ".mdc") && !strings.HasSuffix(path, ".md") {
		return false
	}
	if strings.Contains(path, "README.md") || strings.HasPrefix(path, "docs/") {
		return false
	}
	return true
}

func (g *Generator) checkRules(changes gitdiff.Changes) RuleCheck {
	var ruleFiles []string
	for _, f := range changes.All() {
		if isRuleFile(f) {
			ruleFiles = append(ruleFiles, f)
		}
	}
	if len(ruleFiles) == 0 {
		return RuleCheck{Files: []string{}, Valid: true}
	}

	check := RuleCheck{HasRules: true, Count: len(ruleFiles), Files: ruleFiles}
	for _, f := range ruleFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		res := g.linter.CheckFile(f)
		if !res.Valid {
			check.Errors = append(check.Errors, res.Errors...)
			check.Warnings = append(check.Warnings, res.Warnings...)
		}
	}
	check.Valid = len(check.Errors) == 0
	return check
}

func (g *Generator) checkDocs(changes gitdiff.Changes) DocCheck {
	all := changes.All()

	hasRuleChanges := false
	for _, f := range all {
		if isRuleFile(f) {
			hasRuleChanges = true
			break
		}
	}
	docsUpdated := false
	for _, f := range all {
		if f == "CHANGELOG.md" || f == "README.md" || f == "README.cn.md" {
			docsUpdated = true
			break
		}
	}

	rec := "documentation is up to date"
	if hasRuleChanges && !docsUpdated {
		rec = "consider updating CHANGELOG.md"
	}
	return DocCheck{
		HasRuleChanges: hasRuleChanges,
		DocsUpdated:    docsUpdated,
		Recommendation: rec,
	}
}

func (g *Generator) checkTokens(changes gitdiff.Changes) TokenCheck {
	hasFullRules := false
	for _, f := range changes.All() {
		if strings.HasPrefix(f, g.fullDir+"/") && strings.HasSuffix(f, ".mdc") {
			hasFullRules = true
			break
		}
	}
	if !hasFullRules {
		return TokenCheck{Message: "no full rule changes detected"}
	}
	if g.calc == nil {
		return TokenCheck{Message: "tokenizer unavailable"}
	}

	results, err := g.calc.ScanDirectory(g.fullDir, g.conciseDir)
	if err != nil {
		return TokenCheck{Message: "token calculation failed: " + err.Error()}
	}
	s := tokens.Summarize(results)
	return TokenCheck{
		Checked:          true,
		TotalFiles:       s.TotalFiles,
		AvgReduction:     s.AvgReduction,
		MeetsTargetCount: s.MeetsTargetCount,
		MeetsTarget:      s.AvgReduction >= g.target,
	}
}

// Score derives the 0..100 quality score. Penalties: invalid rules -40,
// otherwise -5 per warning floored at 0; missing doc update -20; token
// reduction below 50% -40, below 70% -20. The warning floor is applied
// before the doc and token penalties, matching the gate's historical
// arithmetic.
func Score(rule RuleCheck, doc DocCheck, token TokenCheck) int {
	score := 100

	if rule.HasRules {
		if !rule.Valid {
			score -= 40
		} else if len(rule.Warnings) > 0 {
			score -= len(rule.Warnings) * 5
			if score < 0 {
				score = 0
			}
		}
	}

	if doc.HasRuleChanges && !doc.DocsUpdated {
		score -= 20
	}

	if token.Checked && !token.MeetsTarget {
		switch {
		case token.AvgReduction < 50:
			score -= 40
		case token.AvgReduction < 70:
			score -= 20
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
