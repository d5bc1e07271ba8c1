// Package apperr defines the sentinel error kinds shared across the toolkit.
package apperr

import "errors"

var (
	ErrPathNotFound        = errors.New("path not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileRead            = errors.New("file read failed")
	ErrToolNotFound        = errors.New("external tool not found")
	ErrToolFailure         = errors.New("external tool failed")
	ErrMetadataParse       = errors.New("metadata parse failed")
)
