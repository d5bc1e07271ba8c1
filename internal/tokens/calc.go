package tokens

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/starford/rulekit/internal/apperr"
	"github.com/starford/rulekit/internal/mdc"
)

// DefaultReductionTarget is the minimum content-token reduction, in
// percent, a concise variant must achieve.
const DefaultReductionTarget = 70.0

// FileCount holds the token counts for one file. For .mdc files Content
// excludes the frontmatter block; for everything else the two are equal.
type FileCount struct {
	File    string `json:"file"`
	Total   int    `json:"total_tokens"`
	Content int    `json:"content_tokens"`
}

// Calculator counts tokens in rule files, optionally consulting a
// checksum-keyed cache so unchanged files are never re-encoded.
type Calculator struct {
	counter Counter
	cache   Cache
	target  float64
}

// NewCalculator wraps a Counter. cache may be nil.
func NewCalculator(counter Counter, cache Cache, target float64) *Calculator {
	if target <= 0 {
		target = DefaultReductionTarget
	}
	return &Calculator{counter: counter, cache: cache, target: target}
}

// CountText counts tokens in text, going through the cache when present.
func (c *Calculator) CountText(text string) int {
	if c.cache == nil {
		return c.counter.Count(text)
	}
	sum := sha256.Sum256([]byte(text))
	key := hex.EncodeToString(sum[:])
	if n, ok, err := c.cache.Get(key); err == nil && ok {
		return n
	} else if err != nil {
		slog.Warn("token cache lookup failed", "error", err)
	}
	n := c.counter.Count(text)
	if err := c.cache.Put(key, n); err != nil {
		slog.Warn("token cache store failed", "error", err)
	}
	return n
}

// FileTokens reads path and returns its total and content token counts.
// Only .md and .mdc files are countable.
func (c *Calculator) FileTokens(path string) (FileCount, error) {
	ext := filepath.Ext(path)
	if ext != ".md" && ext != ".mdc" {
		return FileCount{}, fmt.Errorf("tokens: %s: %w", path, apperr.ErrUnsupportedFileType)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return FileCount{}, fmt.Errorf("tokens: read %s: %w: %w", path, err, apperr.ErrFileRead)
	}
	content := string(data)

	fc := FileCount{File: path, Total: c.CountText(content)}
	if filepath.Ext(path) == ".mdc" {
		fc.Content = c.CountText(mdc.Body(content))
	} else {
		fc.Content = fc.Total
	}
	return fc, nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
