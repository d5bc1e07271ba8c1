package tokens

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Directory segment names driving the full-to-concise path mapping.
const (
	FullDirName    = "full-rules"
	ConciseDirName = ".concise-rules"
	rulesetsDir    = "rulesets"
	templatesDir   = "project-templates"
)

// Comparison is the token comparison of one full/concise file pair.
type Comparison struct {
	File                 string  `json:"file"`
	FullPath             string  `json:"full_path"`
	ConcisePath          string  `json:"concise_path"`
	FullTokens           int     `json:"full_tokens"`
	FullContentTokens    int     `json:"full_content_tokens"`
	ConciseTokens        int     `json:"concise_tokens"`
	ConciseContentTokens int     `json:"concise_content_tokens"`
	Reduction            float64 `json:"reduction"`
	MeetsTarget          bool    `json:"meets_target"`
}

// Summary aggregates a directory comparison.
type Summary struct {
	TotalFiles         int     `json:"total_files"`
	TotalFullTokens    int     `json:"total_full_tokens"`
	TotalConciseTokens int     `json:"total_concise_tokens"`
	AvgReduction       float64 `json:"avg_reduction"`
	MeetsTargetCount   int     `json:"meets_target_count"`
}

// ComparisonReport is the JSON shape of a directory comparison.
type ComparisonReport struct {
	Results []Comparison `json:"results"`
	Summary Summary      `json:"summary"`
}

// ConcisePath maps a full rule file to where its concise variant lives.
// full-rules/<layer>/rulesets/<file> becomes .concise-rules/<layer>/<file>,
// and template trees additionally drop their .cursor/rules segments. The
// second return is false when the path carries no full-rules segment or is
// too shallow to map.
func ConcisePath(fullPath, conciseBase string) (string, bool) {
	parts := strings.Split(filepath.ToSlash(fullPath), "/")
	idx := -1
	for i, p := range parts {
		if p == FullDirName {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", false
	}
	rel := parts[idx+1:]
	if len(rel) < 2 {
		return "", false
	}

	var concise []string
	if rel[1] == rulesetsDir {
		concise = append([]string{rel[0]}, rel[2:]...)
	} else {
		concise = append(concise, rel...)
	}
	if containsSegment(concise, templatesDir) {
		kept := concise[:0:0]
		for _, p := range concise {
			if p != ".cursor" && p != "rules" {
				kept = append(kept, p)
			}
		}
		concise = kept
	}
	return filepath.Join(conciseBase, filepath.Join(concise...)), true
}

func containsSegment(parts []string, want string) bool {
	for _, p := range parts {
		if p == want {
			return true
		}
	}
	return false
}

// Compare measures the token reduction of a full/concise pair. Reduction
// is computed over content tokens so frontmatter never skews the figure.
func (c *Calculator) Compare(fullPath, concisePath string) (Comparison, error) {
	full, err := c.FileTokens(fullPath)
	if err != nil {
		return Comparison{}, err
	}
	concise, err := c.FileTokens(concisePath)
	if err != nil {
		return Comparison{}, err
	}

	var reduction float64
	if full.Content > 0 {
		reduction = float64(full.Content-concise.Content) / float64(full.Content) * 100
	}
	reduction = round2(reduction)

	return Comparison{
		File:                 filepath.Base(fullPath),
		FullPath:             fullPath,
		ConcisePath:          concisePath,
		FullTokens:           full.Total,
		FullContentTokens:    full.Content,
		ConciseTokens:        concise.Total,
		ConciseContentTokens: concise.Content,
		Reduction:            reduction,
		MeetsTarget:          reduction >= c.target,
	}, nil
}

// ScanDirectory compares every rule file under dir that has a concise
// counterpart below conciseBase. README and docs files are skipped, as is
// any full file without a concise twin.
func (c *Calculator) ScanDirectory(dir, conciseBase string) ([]Comparison, error) {
	var mdcFiles, mdFiles []string
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".mdc":
			mdcFiles = append(mdcFiles, path)
		case ".md":
			mdFiles = append(mdFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("tokens: walk %s: %w", dir, err)
	}

	var results []Comparison
	for _, full := range append(mdcFiles, mdFiles...) {
		if filepath.Base(full) == "README.md" || containsSegment(strings.Split(filepath.ToSlash(full), "/"), "docs") {
			continue
		}
		concise, ok := ConcisePath(full, conciseBase)
		if !ok {
			continue
		}
		if _, err := os.Stat(concise); err != nil {
			continue
		}
		cmp, err := c.Compare(full, concise)
		if err != nil {
			return nil, err
		}
		results = append(results, cmp)
	}
	return results, nil
}

// Summarize aggregates comparisons into the report summary.
func Summarize(results []Comparison) Summary {
	s := Summary{TotalFiles: len(results)}
	for _, r := range results {
		s.TotalFullTokens += r.FullContentTokens
		s.TotalConciseTokens += r.ConciseContentTokens
		if r.MeetsTarget {
			s.MeetsTargetCount++
		}
	}
	if s.TotalFullTokens > 0 {
		s.AvgReduction = round2(float64(s.TotalFullTokens-s.TotalConciseTokens) / float64(s.TotalFullTokens) * 100)
	}
	return s
}

// MarkdownReport renders the comparison as a Markdown table with a stats
// section, sorted by file name.
func MarkdownReport(results []Comparison) string {
	sorted := make([]Comparison, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].File < sorted[j].File })

	var b strings.Builder
	b.WriteString("# Token Comparison Report\n\n")
	b.WriteString("| File | Full Tokens | Concise Tokens | Reduction | Status |\n")
	b.WriteString("|------|------------|----------------|-----------|--------|\n")
	for _, r := range sorted {
		status := "✅"
		if !r.MeetsTarget {
			status = "⚠️"
		}
		fmt.Fprintf(&b, "| %s | %d | %d | %v%% | %s |\n",
			r.File, r.FullContentTokens, r.ConciseContentTokens, r.Reduction, status)
	}

	s := Summarize(results)
	b.WriteString("\n## Statistics\n\n")
	fmt.Fprintf(&b, "- **Total files**: %d\n", s.TotalFiles)
	fmt.Fprintf(&b, "- **Full total tokens**: %d\n", s.TotalFullTokens)
	fmt.Fprintf(&b, "- **Concise total tokens**: %d\n", s.TotalConciseTokens)
	fmt.Fprintf(&b, "- **Average reduction**: %.2f%%\n", s.AvgReduction)
	fmt.Fprintf(&b, "- **Files meeting target**: %d/%d\n", s.MeetsTargetCount, s.TotalFiles)
	return b.String()
}

// RenderTable writes the plain-text comparison table.
func RenderTable(w io.Writer, results []Comparison) {
	sorted := make([]Comparison, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].File < sorted[j].File })

	fmt.Fprintf(w, "%-40s %-10s %-10s %-10s %s\n", "file", "full", "concise", "reduction", "status")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, r := range sorted {
		status := "✅"
		if !r.MeetsTarget {
			status = "⚠️"
		}
		fmt.Fprintf(w, "%-40s %-10d %-10d %-9v%% %s\n",
			r.File, r.FullContentTokens, r.ConciseContentTokens, r.Reduction, status)
	}
}
