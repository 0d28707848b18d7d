package locker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/live-labs/filelocker/internal/crypto"
	"github.com/live-labs/filelocker/internal/security"
	"github.com/live-labs/filelocker/internal/storage"
)

// BlobSuffix is appended to every storage id on disk
const BlobSuffix = ".loc"

var (
	// ErrNotFound reports that no index entry exists for the filename.
	ErrNotFound = errors.New("file not found")

	// ErrInconsistent reports an index entry whose blob is missing from
	// disk. It signals a bug or external tampering and is always surfaced,
	// never silently repaired.
	ErrInconsistent = errors.New("metadata inconsistency: blob missing from disk")
)

// Locker is the encrypted object store. The in-memory index is guarded by a
// single lock around each read-modify-persist sequence; one file operation
// per user at a time is assumed from callers.
type Locker struct {
	mu    sync.Mutex
	repo  storage.IndexRepository
	blobs *security.BlobDir
	index storage.FileIndex
}

// Open loads the file index and attaches the blob directory
func Open(repo storage.IndexRepository, blobs *security.BlobDir) (*Locker, error) {
	index, err := repo.Load()
	if err != nil {
		return nil, err
	}
	return &Locker{repo: repo, blobs: blobs, index: index}, nil
}

// Upload encrypts the file at sourcePath under the user's password and
// records it under its base filename, returning that filename. Re-uploading
// an existing filename replaces the entry with a newly allocated storage id
// and then best-effort deletes the superseded blob.
func (l *Locker) Upload(username string, password []byte, sourcePath string) (string, error) {
	src, err := os.Open(sourcePath)
	if err != nil {
		return "", fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	fileName := filepath.Base(sourcePath)
	id := uuid.New().String() + BlobSuffix

	if err := l.writeBlob(id, src, password); err != nil {
		return "", err
	}

	l.mu.Lock()
	files, ok := l.index[username]
	if !ok {
		files = make(map[string]string)
		l.index[username] = files
	}
	previous, replaced := files[fileName]
	files[fileName] = id

	if err := l.repo.Save(l.index); err != nil {
		// Roll back so memory matches the last persisted snapshot.
		if replaced {
			files[fileName] = previous
		} else {
			delete(files, fileName)
			if len(files) == 0 {
				delete(l.index, username)
			}
		}
		l.mu.Unlock()
		l.removeBlobBestEffort(id)
		return "", err
	}
	l.mu.Unlock()

	if replaced {
		l.removeBlobBestEffort(previous)
	}
	return fileName, nil
}

func (l *Locker) writeBlob(id string, src *os.File, password []byte) error {
	blob, err := l.blobs.Create(id)
	if err != nil {
		return fmt.Errorf("failed to create blob: %w", err)
	}

	if err := crypto.Encrypt(blob, src, password); err != nil {
		blob.Close()
		l.removeBlobBestEffort(id)
		return err
	}
	if err := blob.Sync(); err != nil {
		blob.Close()
		l.removeBlobBestEffort(id)
		return fmt.Errorf("failed to sync blob: %w", err)
	}
	if err := blob.Close(); err != nil {
		l.removeBlobBestEffort(id)
		return fmt.Errorf("failed to close blob: %w", err)
	}
	return nil
}

// Download decrypts the named file to destPath. It returns ErrNotFound when
// no index entry exists and ErrInconsistent when the entry's blob is missing
// from disk. Plaintext is staged in a temporary file and renamed over
// destPath only after the authentication tag verifies, so a wrong password
// or tampered blob never leaves output behind.
func (l *Locker) Download(username string, password []byte, fileName, destPath string) error {
	l.mu.Lock()
	id, ok := l.index[username][fileName]
	l.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	blob, err := l.blobs.OpenBlob(id)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrInconsistent, id)
		}
		return fmt.Errorf("failed to open blob: %w", err)
	}
	defer blob.Close()

	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".filelocker-download-*")
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	if err := crypto.Decrypt(tmp, blob, password); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to sync destination: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close destination: %w", err)
	}

	if err := os.Rename(tmp.Name(), destPath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move into place: %w", err)
	}
	return nil
}

// Delete removes the index entry for the named file and persists the index,
// then removes the physical blob on a best-effort basis: a failure there is
// logged and left for Sweep to reclaim.
func (l *Locker) Delete(username, fileName string) error {
	l.mu.Lock()
	files, ok := l.index[username]
	if !ok {
		l.mu.Unlock()
		return ErrNotFound
	}
	id, ok := files[fileName]
	if !ok {
		l.mu.Unlock()
		return ErrNotFound
	}

	delete(files, fileName)
	if len(files) == 0 {
		delete(l.index, username)
	}

	if err := l.repo.Save(l.index); err != nil {
		// Roll back so memory matches the last persisted snapshot.
		l.index[username] = files
		files[fileName] = id
		l.mu.Unlock()
		return err
	}
	l.mu.Unlock()

	l.removeBlobBestEffort(id)
	return nil
}

// List returns the filenames stored for a user; an unknown username yields
// an empty list. No ordering is guaranteed.
func (l *Locker) List(username string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	files := l.index[username]
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	return names
}

// Sweep removes blobs no index entry references and returns their ids.
// Orphans accumulate from replaced uploads, failed deletes and crashes
// between blob write and index persist; reclamation stays out of the hot
// path and is invoked separately.
func (l *Locker) Sweep() ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	referenced := make(map[string]bool)
	for _, files := range l.index {
		for _, id := range files {
			referenced[id] = true
		}
	}

	names, err := l.blobs.List()
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, name := range names {
		if referenced[name] {
			continue
		}
		if err := l.blobs.Remove(name); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to remove orphan blob %s: %v\n", name, err)
			continue
		}
		removed = append(removed, name)
	}
	return removed, nil
}

func (l *Locker) removeBlobBestEffort(id string) {
	if err := l.blobs.Remove(id); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: failed to remove blob %s: %v\n", id, err)
	}
}
