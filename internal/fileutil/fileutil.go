// Package fileutil provides file and path utility functions for the CLI.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// StdinPath selects standard input in ReadInput.
const StdinPath = "-"

// Sentinel errors for file utility operations.
var (
	ErrEmptyPath     = errors.New("path cannot be empty")
	ErrIsDirectory   = errors.New("path is a directory")
	ErrInputTooLarge = errors.New("input exceeds maximum size")
)

// ReadInput reads at most limit bytes from path, or from stdin when path
// is "-". A limit <= 0 disables the check.
func ReadInput(path string, stdin io.Reader, limit int64) ([]byte, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	var r io.Reader
	if path == StdinPath {
		r = stdin
	} else {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
		}
		f, err := os.Open(path) // #nosec G304 -- input path is user-provided
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrInputTooLarge, limit)
	}
	return data, nil
}

// WriteFileAtomic writes data to a temp file next to path and renames it
// into place, so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte) error {
	if path == "" {
		return ErrEmptyPath
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".linkify-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, writeErr := tmpFile.Write(data); writeErr != nil {
		_ = tmpFile.Close()
		cleanup()
		return fmt.Errorf("writing temp file: %w", writeErr)
	}
	if closeErr := tmpFile.Close(); closeErr != nil {
		cleanup()
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "linkify" -> false (name)
//   - "./linkify.yaml" -> true (relative path)
//   - "/etc/linkify/prod.yaml" -> true (absolute)
//   - "C:\linkify\prod.yaml" -> true (Windows)
//   - "staging" -> false (name)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}
