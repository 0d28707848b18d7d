package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidBlobName = errors.New("invalid blob name")
)

// BlobDir provides file access confined to the blob directory using Go's
// os.Root API. Storage ids come from the persisted index; a tampered index
// must not be able to reach files outside the directory, so every id is
// validated before use and all I/O goes through the root handle.
type BlobDir struct {
	root *os.Root
	path string
}

// Open opens the blob directory, creating it if needed
func Open(path string) (*BlobDir, error) {
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}

	root, err := os.OpenRoot(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob directory: %w", err)
	}

	return &BlobDir{root: root, path: path}, nil
}

// Close releases the directory handle
func (d *BlobDir) Close() error {
	if d.root != nil {
		return d.root.Close()
	}
	return nil
}

// ValidateName checks that a storage id names a single regular entry inside
// the blob directory. It rejects empty names, absolute paths, separators
// and anything filepath.IsLocal refuses (.., reserved names).
func (d *BlobDir) ValidateName(id string) error {
	if id == "" || id == "." || id == ".." {
		return ErrInvalidBlobName
	}
	if strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %s", ErrInvalidBlobName, id)
	}
	if !filepath.IsLocal(id) {
		return fmt.Errorf("%w: %s", ErrInvalidBlobName, id)
	}
	return nil
}

// Create creates a new blob file for writing. The id must be unused.
func (d *BlobDir) Create(id string) (*os.File, error) {
	if err := d.ValidateName(id); err != nil {
		return nil, err
	}
	return d.root.OpenFile(id, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
}

// OpenBlob opens an existing blob for reading
func (d *BlobDir) OpenBlob(id string) (*os.File, error) {
	if err := d.ValidateName(id); err != nil {
		return nil, err
	}
	return d.root.Open(id)
}

// Stat reports whether a blob exists
func (d *BlobDir) Stat(id string) (os.FileInfo, error) {
	if err := d.ValidateName(id); err != nil {
		return nil, err
	}
	return d.root.Stat(id)
}

// Remove deletes a blob file
func (d *BlobDir) Remove(id string) error {
	if err := d.ValidateName(id); err != nil {
		return err
	}
	return d.root.Remove(id)
}

// List returns the names of all blob files in the directory
func (d *BlobDir) List() ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}
