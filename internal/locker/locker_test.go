package locker

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/live-labs/filelocker/internal/crypto"
	"github.com/live-labs/filelocker/internal/security"
	"github.com/live-labs/filelocker/internal/storage"
)

func newTestLocker(t *testing.T) (*Locker, string) {
	t.Helper()
	root := t.TempDir()

	blobs, err := security.Open(filepath.Join(root, "files"))
	if err != nil {
		t.Fatalf("failed to open blob dir: %v", err)
	}
	t.Cleanup(func() { blobs.Close() })

	l, err := Open(storage.NewIndexFile(filepath.Join(root, "index.json")), blobs)
	if err != nil {
		t.Fatalf("failed to open locker: %v", err)
	}
	return l, root
}

func writeSource(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0600); err != nil {
		t.Fatalf("failed to write source file: %v", err)
	}
	return path
}

func TestUploadListDownloadDelete(t *testing.T) {
	l, root := newTestLocker(t)
	password := []byte("Secret1")
	content := []byte("hello locker")

	src := writeSource(t, root, "a.txt", content)

	name, err := l.Upload("alice", password, src)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if name != "a.txt" {
		t.Errorf("Upload returned %q, want a.txt", name)
	}

	if got := l.List("alice"); !slices.Contains(got, "a.txt") {
		t.Fatalf("List missing a.txt: %v", got)
	}

	dest := filepath.Join(root, "out.txt")
	if err := l.Download("alice", password, "a.txt", dest); err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("failed to read download: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Error("downloaded bytes differ from source")
	}

	if err := l.Delete("alice", "a.txt"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if got := l.List("alice"); len(got) != 0 {
		t.Errorf("List after delete: %v", got)
	}
	if err := l.Download("alice", password, "a.txt", dest); err != ErrNotFound {
		t.Errorf("Download after delete: expected ErrNotFound, got %v", err)
	}
}

func TestLargePayloadDigest(t *testing.T) {
	l, root := newTestLocker(t)
	password := []byte("Secret1")

	payload := make([]byte, 1<<20)
	if _, err := rand.Read(payload); err != nil {
		t.Fatalf("rand failed: %v", err)
	}
	src := writeSource(t, root, "photo.bin", payload)

	if _, err := l.Upload("alice", password, src); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	dest := filepath.Join(root, "photo-copy.bin")
	if err := l.Download("alice", password, "photo.bin", dest); err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("failed to read download: %v", err)
	}
	if sha256.Sum256(got) != sha256.Sum256(payload) {
		t.Error("digest mismatch between source and download")
	}
}

func TestDownloadUnknownFile(t *testing.T) {
	l, root := newTestLocker(t)

	err := l.Download("alice", []byte("pw"), "missing.txt", filepath.Join(root, "out"))
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListUnknownUser(t *testing.T) {
	l, _ := newTestLocker(t)
	if got := l.List("nobody"); len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}
}

func TestDeleteUnknownFile(t *testing.T) {
	l, _ := newTestLocker(t)
	if err := l.Delete("alice", "missing.txt"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDownloadWrongPassword(t *testing.T) {
	l, root := newTestLocker(t)

	src := writeSource(t, root, "a.txt", []byte("secret content"))
	if _, err := l.Upload("alice", []byte("right"), src); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	dest := filepath.Join(root, "out.txt")
	if err := l.Download("alice", []byte("wrong"), "a.txt", dest); err != crypto.ErrAuthFailed {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}

	// No plaintext, not even a partial file, may appear at the destination.
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("destination file exists after failed decryption")
	}
}

func TestDownloadMissingBlob(t *testing.T) {
	l, root := newTestLocker(t)
	password := []byte("pw")

	src := writeSource(t, root, "a.txt", []byte("content"))
	if _, err := l.Upload("alice", password, src); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	// Remove the blob behind the index's back.
	blobs, err := os.ReadDir(filepath.Join(root, "files"))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(blobs) != 1 {
		t.Fatalf("expected 1 blob, got %d", len(blobs))
	}
	if err := os.Remove(filepath.Join(root, "files", blobs[0].Name())); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	err = l.Download("alice", password, "a.txt", filepath.Join(root, "out"))
	if !errors.Is(err, ErrInconsistent) {
		t.Errorf("expected ErrInconsistent, got %v", err)
	}
}

// Re-uploading the same filename must leave exactly one reachable entry,
// the most recent, and reclaim the superseded blob.
func TestUploadOverwrite(t *testing.T) {
	l, root := newTestLocker(t)
	password := []byte("pw")

	src := writeSource(t, root, "a.txt", []byte("version one"))
	if _, err := l.Upload("alice", password, src); err != nil {
		t.Fatalf("first Upload failed: %v", err)
	}

	src = writeSource(t, root, "a.txt", []byte("version two"))
	if _, err := l.Upload("alice", password, src); err != nil {
		t.Fatalf("second Upload failed: %v", err)
	}

	if got := l.List("alice"); len(got) != 1 || got[0] != "a.txt" {
		t.Fatalf("expected exactly [a.txt], got %v", got)
	}

	dest := filepath.Join(root, "out.txt")
	if err := l.Download("alice", password, "a.txt", dest); err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("failed to read download: %v", err)
	}
	if string(got) != "version two" {
		t.Errorf("downloaded %q, want the most recent upload", got)
	}

	// The superseded blob was reclaimed on replace.
	entries, err := os.ReadDir(filepath.Join(root, "files"))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 blob after overwrite, got %d", len(entries))
	}
}

// failingIndexRepo persists normally for the first failAfter saves, then
// fails every Save.
type failingIndexRepo struct {
	storage.IndexRepository
	saves     int
	failAfter int
}

func (r *failingIndexRepo) Save(index storage.FileIndex) error {
	r.saves++
	if r.saves > r.failAfter {
		return errors.New("disk full")
	}
	return r.IndexRepository.Save(index)
}

// A delete whose index persist fails must leave the entry and its blob in
// place, so memory never runs ahead of the persisted snapshot.
func TestDeleteRollsBackOnSaveFailure(t *testing.T) {
	root := t.TempDir()
	password := []byte("pw")

	blobs, err := security.Open(filepath.Join(root, "files"))
	if err != nil {
		t.Fatalf("failed to open blob dir: %v", err)
	}
	defer blobs.Close()

	repo := &failingIndexRepo{
		IndexRepository: storage.NewIndexFile(filepath.Join(root, "index.json")),
		failAfter:       1,
	}
	l, err := Open(repo, blobs)
	if err != nil {
		t.Fatalf("failed to open locker: %v", err)
	}

	src := writeSource(t, root, "a.txt", []byte("still here"))
	if _, err := l.Upload("alice", password, src); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if err := l.Delete("alice", "a.txt"); err == nil {
		t.Fatal("expected Delete to fail when the index cannot be persisted")
	}

	if got := l.List("alice"); len(got) != 1 || got[0] != "a.txt" {
		t.Errorf("expected entry to survive failed delete, got %v", got)
	}
	dest := filepath.Join(root, "a.txt.out")
	if err := l.Download("alice", password, "a.txt", dest); err != nil {
		t.Errorf("Download after failed delete: %v", err)
	}
}

func TestUsersAreIsolated(t *testing.T) {
	l, root := newTestLocker(t)

	src := writeSource(t, root, "a.txt", []byte("alice's file"))
	if _, err := l.Upload("alice", []byte("pw-a"), src); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if got := l.List("bob"); len(got) != 0 {
		t.Errorf("bob sees alice's files: %v", got)
	}
	err := l.Download("bob", []byte("pw-b"), "a.txt", filepath.Join(root, "out"))
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound for other user, got %v", err)
	}
}

func TestSweepRemovesOrphans(t *testing.T) {
	l, root := newTestLocker(t)
	password := []byte("pw")

	src := writeSource(t, root, "a.txt", []byte("kept"))
	if _, err := l.Upload("alice", password, src); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	// Plant two orphans next to the referenced blob.
	for _, name := range []string{"orphan-1.loc", "orphan-2.loc"} {
		if err := os.WriteFile(filepath.Join(root, "files", name), []byte("x"), 0600); err != nil {
			t.Fatalf("failed to plant orphan: %v", err)
		}
	}

	removed, err := l.Sweep()
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if len(removed) != 2 {
		t.Errorf("expected 2 orphans removed, got %v", removed)
	}

	// The referenced blob survived and still decrypts.
	dest := filepath.Join(root, "out.txt")
	if err := l.Download("alice", password, "a.txt", dest); err != nil {
		t.Errorf("Download after sweep failed: %v", err)
	}
}

func TestIndexPersistsAcrossReopen(t *testing.T) {
	l, root := newTestLocker(t)
	password := []byte("pw")

	src := writeSource(t, root, "a.txt", []byte("durable"))
	if _, err := l.Upload("alice", password, src); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	blobs, err := security.Open(filepath.Join(root, "files"))
	if err != nil {
		t.Fatalf("failed to reopen blob dir: %v", err)
	}
	defer blobs.Close()

	reopened, err := Open(storage.NewIndexFile(filepath.Join(root, "index.json")), blobs)
	if err != nil {
		t.Fatalf("failed to reopen locker: %v", err)
	}

	dest := filepath.Join(root, "out.txt")
	if err := reopened.Download("alice", password, "a.txt", dest); err != nil {
		t.Fatalf("Download after reopen failed: %v", err)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("failed to read download: %v", err)
	}
	if string(got) != "durable" {
		t.Errorf("downloaded %q, want %q", got, "durable")
	}
}
