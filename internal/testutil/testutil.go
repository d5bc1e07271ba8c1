// Package testutil provides shared test helpers for setting up rule trees
// and token caches.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/rulekit/internal/storage"
	"github.com/starford/rulekit/internal/tokencache"
)

// TestTree creates a temporary rules tree with a storage.Provider.
func TestTree(t *testing.T) (string, storage.Provider) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

// SeedTree writes the given relative-path to content map under root.
func SeedTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// TestCache creates a temporary token cache that is automatically closed.
func TestCache(t *testing.T) *tokencache.Store {
	t.Helper()
	store, err := tokencache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}
