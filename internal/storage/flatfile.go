package storage

import (
	"encoding/json"
	"fmt"
	"os"
)

// CredentialFile is a flat-file CredentialRepository: a single JSON snapshot
// of the whole credential index.
type CredentialFile struct {
	path string
}

// NewCredentialFile creates a repository backed by the given file path
func NewCredentialFile(path string) *CredentialFile {
	return &CredentialFile{path: path}
}

// Load reads the full credential index. A missing file is an empty index.
func (f *CredentialFile) Load() (Credentials, error) {
	creds := make(Credentials)
	if err := loadSnapshot(f.path, &creds); err != nil {
		return nil, fmt.Errorf("failed to load credential index: %w", err)
	}
	return creds, nil
}

// Save rewrites the full credential index
func (f *CredentialFile) Save(creds Credentials) error {
	if err := writeSnapshot(f.path, creds); err != nil {
		return fmt.Errorf("failed to save credential index: %w", err)
	}
	return nil
}

// IndexFile is a flat-file IndexRepository for the file index.
type IndexFile struct {
	path string
}

// NewIndexFile creates a repository backed by the given file path
func NewIndexFile(path string) *IndexFile {
	return &IndexFile{path: path}
}

// Load reads the full file index. A missing file is an empty index.
func (f *IndexFile) Load() (FileIndex, error) {
	index := make(FileIndex)
	if err := loadSnapshot(f.path, &index); err != nil {
		return nil, fmt.Errorf("failed to load file index: %w", err)
	}
	return index, nil
}

// Save rewrites the full file index
func (f *IndexFile) Save(index FileIndex) error {
	if err := writeSnapshot(f.path, index); err != nil {
		return fmt.Errorf("failed to save file index: %w", err)
	}
	return nil
}

func loadSnapshot(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, v)
}

// writeSnapshot replaces the snapshot atomically: a crash mid-write leaves
// either the previous snapshot or the new one, never a torn file.
func writeSnapshot(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
