package tokens

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/rulekit/internal/apperr"
)

// runeCounter counts one token per rune, keeping tests deterministic and
// offline.
type runeCounter struct{}

func (runeCounter) Count(text string) int { return len([]rune(text)) }
func (runeCounter) Encoding() string      { return "rune" }

type mapCache struct {
	data map[string]int
	gets int
	puts int
}

func newMapCache() *mapCache { return &mapCache{data: map[string]int{}} }

func (m *mapCache) Get(checksum string) (int, bool, error) {
	m.gets++
	n, ok := m.data[checksum]
	return n, ok, nil
}

func (m *mapCache) Put(checksum string, count int) error {
	m.puts++
	m.data[checksum] = count
	return nil
}

func write(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConcisePath(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"full-rules/ide-layer/rulesets/01-general.mdc", ".concise-rules/ide-layer/01-general.mdc", true},
		{"full-rules/ide-layer/01-general.mdc", ".concise-rules/ide-layer/01-general.mdc", true},
		{"repo/full-rules/cli-layer/rulesets/02-style.md", ".concise-rules/cli-layer/02-style.md", true},
		{"full-rules/project-templates/react-app/.cursor/rules/01-react.mdc", ".concise-rules/project-templates/react-app/01-react.mdc", true},
		{"full-rules/01-orphan.mdc", "", false},
		{"other-rules/layer/rulesets/01-x.mdc", "", false},
	}
	for _, tc := range cases {
		got, ok := ConcisePath(tc.in, ".concise-rules")
		if ok != tc.ok || filepath.ToSlash(got) != tc.want {
			t.Errorf("ConcisePath(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestFileTokens_MDCExcludesFrontmatter(t *testing.T) {
	dir := t.TempDir()
	body := "0123456789"
	path := write(t, dir, "01-a.mdc", "---\ndescription: x\n---\n\n"+body+"\n")

	calc := NewCalculator(runeCounter{}, nil, 0)
	fc, err := calc.FileTokens(path)
	if err != nil {
		t.Fatalf("FileTokens: %v", err)
	}
	if fc.Content != len(body) {
		t.Errorf("content tokens = %d, want %d", fc.Content, len(body))
	}
	if fc.Total <= fc.Content {
		t.Errorf("total %d should exceed content %d", fc.Total, fc.Content)
	}
}

func TestFileTokens_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "notes.txt", "plain text\n")

	calc := NewCalculator(runeCounter{}, nil, 0)
	_, err := calc.FileTokens(path)
	if !errors.Is(err, apperr.ErrUnsupportedFileType) {
		t.Errorf("err = %v, want ErrUnsupportedFileType", err)
	}
}

func TestFileTokens_PlainMarkdownEqualCounts(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "01-a.md", "# Title\nbody\n")

	calc := NewCalculator(runeCounter{}, nil, 0)
	fc, err := calc.FileTokens(path)
	if err != nil {
		t.Fatal(err)
	}
	if fc.Total != fc.Content {
		t.Errorf("total %d != content %d for .md file", fc.Total, fc.Content)
	}
}

func TestCompare_Reduction(t *testing.T) {
	dir := t.TempDir()
	full := write(t, dir, "full-rules/ide/rulesets/01-a.md", strings.Repeat("x", 100))
	concise := write(t, dir, ".concise-rules/ide/01-a.md", strings.Repeat("x", 25))

	calc := NewCalculator(runeCounter{}, nil, 70)
	cmp, err := calc.Compare(full, concise)
	if err != nil {
		t.Fatal(err)
	}
	if cmp.Reduction != 75.0 {
		t.Errorf("reduction = %v, want 75", cmp.Reduction)
	}
	if !cmp.MeetsTarget {
		t.Error("75% reduction should meet the 70% target")
	}
	if cmp.File != "01-a.md" {
		t.Errorf("file = %q", cmp.File)
	}
}

func TestCompare_BelowTarget(t *testing.T) {
	dir := t.TempDir()
	full := write(t, dir, "full.md", strings.Repeat("x", 100))
	concise := write(t, dir, "concise.md", strings.Repeat("x", 60))

	calc := NewCalculator(runeCounter{}, nil, 70)
	cmp, err := calc.Compare(full, concise)
	if err != nil {
		t.Fatal(err)
	}
	if cmp.MeetsTarget {
		t.Errorf("40%% reduction must not meet target, got %+v", cmp)
	}
}

func TestScanDirectory(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "full-rules/ide/rulesets/01-a.md", strings.Repeat("x", 100))
	write(t, dir, ".concise-rules/ide/01-a.md", strings.Repeat("x", 20))
	// No concise twin, skipped.
	write(t, dir, "full-rules/ide/rulesets/02-b.md", "content")
	// README and docs are always skipped.
	write(t, dir, "full-rules/README.md", "readme")
	write(t, dir, "full-rules/docs/guide.md", "guide")

	calc := NewCalculator(runeCounter{}, nil, 70)
	results, err := calc.ScanDirectory(filepath.Join(dir, "full-rules"), filepath.Join(dir, ".concise-rules"))
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1: %+v", len(results), results)
	}
	if results[0].File != "01-a.md" {
		t.Errorf("file = %q", results[0].File)
	}
}

func TestSummarize(t *testing.T) {
	results := []Comparison{
		{FullContentTokens: 100, ConciseContentTokens: 20, MeetsTarget: true},
		{FullContentTokens: 100, ConciseContentTokens: 60, MeetsTarget: false},
	}
	s := Summarize(results)
	if s.TotalFiles != 2 || s.TotalFullTokens != 200 || s.TotalConciseTokens != 80 {
		t.Errorf("summary = %+v", s)
	}
	if s.AvgReduction != 60.0 {
		t.Errorf("avg reduction = %v, want 60", s.AvgReduction)
	}
	if s.MeetsTargetCount != 1 {
		t.Errorf("meets target = %d, want 1", s.MeetsTargetCount)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.AvgReduction != 0 || s.TotalFiles != 0 {
		t.Errorf("summary = %+v", s)
	}
}

func TestMarkdownReport_SortedWithStats(t *testing.T) {
	results := []Comparison{
		{File: "02-b.mdc", FullContentTokens: 50, ConciseContentTokens: 40, Reduction: 20, MeetsTarget: false},
		{File: "01-a.mdc", FullContentTokens: 100, ConciseContentTokens: 20, Reduction: 80, MeetsTarget: true},
	}
	out := MarkdownReport(results)
	if strings.Index(out, "01-a.mdc") > strings.Index(out, "02-b.mdc") {
		t.Error("rows not sorted by file name")
	}
	for _, want := range []string{"✅", "⚠️", "**Total files**: 2", "**Files meeting target**: 1/2"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestCountText_UsesCache(t *testing.T) {
	cache := newMapCache()
	calc := NewCalculator(runeCounter{}, cache, 0)

	if n := calc.CountText("hello"); n != 5 {
		t.Fatalf("count = %d", n)
	}
	if cache.puts != 1 {
		t.Errorf("puts = %d, want 1", cache.puts)
	}
	// Second count hits the cache, no new store.
	if n := calc.CountText("hello"); n != 5 {
		t.Fatalf("count = %d", n)
	}
	if cache.puts != 1 || cache.gets != 2 {
		t.Errorf("puts = %d gets = %d", cache.puts, cache.gets)
	}
}
