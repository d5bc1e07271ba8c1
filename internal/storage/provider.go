// Package storage defines the rules-tree file-system abstraction.
package storage

import "time"

// DocInfo is a lightweight description of one document in the tree.
type DocInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provider is the interface for rules-tree file operations. All paths are
// relative to the tree root.
type Provider interface {
	// List returns metadata for every .md and .mdc file under dir.
	List(dir string) ([]DocInfo, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
}
