// Package tokens measures token consumption of rule files and compares
// full documents against their concise counterparts.
package tokens

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE encoding used for all counts.
const DefaultEncoding = "cl100k_base"

// Counter turns text into a token count.
type Counter interface {
	Count(text string) int
	// Encoding names the tokenizer, used as a cache namespace.
	Encoding() string
}

// Cache stores token counts keyed by content checksum. Lookups and stores
// are best effort; a failing cache must not break counting.
type Cache interface {
	Get(checksum string) (count int, ok bool, err error)
	Put(checksum string, count int) error
}

type tiktokenCounter struct {
	enc  *tiktoken.Tiktoken
	name string
}

// NewTiktokenCounter loads the named BPE encoding. Loading may fetch the
// encoding data on first use, so callers should construct once and reuse.
func NewTiktokenCounter(encoding string) (Counter, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("tokens: load encoding %s: %w", encoding, err)
	}
	return &tiktokenCounter{enc: enc, name: encoding}, nil
}

func (c *tiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

func (c *tiktokenCounter) Encoding() string {
	return c.name
}
