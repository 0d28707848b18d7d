package auth

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/live-labs/filelocker/internal/storage"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	store, err := Open(storage.NewCredentialFile(path))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return store, path
}

func TestRegisterThenLogin(t *testing.T) {
	store, _ := newTestStore(t)

	if err := store.Register("alice", []byte("Secret1")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := store.Login("alice", []byte("Secret1")); err != nil {
		t.Errorf("Login failed: %v", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	store, _ := newTestStore(t)

	if err := store.Register("alice", []byte("Secret1")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := store.Register("alice", []byte("Other2")); err != ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	// Original credentials still authenticate.
	if err := store.Login("alice", []byte("Secret1")); err != nil {
		t.Errorf("original credentials rejected after duplicate register: %v", err)
	}
	if err := store.Login("alice", []byte("Other2")); err != ErrInvalidCredentials {
		t.Errorf("duplicate's password accepted: %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	store, _ := newTestStore(t)

	if err := store.Register("alice", []byte("Secret1")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	wrong := []string{"secret1", "Secret1 ", " Secret1", "Secret", "Secret12", "x"}
	for _, pw := range wrong {
		if err := store.Login("alice", []byte(pw)); err != ErrInvalidCredentials {
			t.Errorf("password %q: expected ErrInvalidCredentials, got %v", pw, err)
		}
	}
}

// Unknown user and wrong password must be the same error value, never
// revealing whether a username exists.
func TestLoginUnknownUserIndistinguishable(t *testing.T) {
	store, _ := newTestStore(t)

	if err := store.Register("alice", []byte("Secret1")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	unknownErr := store.Login("nobody", []byte("Secret1"))
	wrongErr := store.Login("alice", []byte("wrong"))

	if unknownErr != ErrInvalidCredentials || wrongErr != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials for both, got %v and %v", unknownErr, wrongErr)
	}
}

func TestEmptyCredentialsRejected(t *testing.T) {
	store, _ := newTestStore(t)

	if err := store.Register("", []byte("pw")); err != ErrEmptyCredentials {
		t.Errorf("empty username: expected ErrEmptyCredentials, got %v", err)
	}
	if err := store.Register("alice", nil); err != ErrEmptyCredentials {
		t.Errorf("empty password: expected ErrEmptyCredentials, got %v", err)
	}
	if err := store.Login("", []byte("pw")); err != ErrEmptyCredentials {
		t.Errorf("empty username: expected ErrEmptyCredentials, got %v", err)
	}
}

func TestCredentialsPersistAcrossReopen(t *testing.T) {
	store, path := newTestStore(t)

	if err := store.Register("alice", []byte("Secret1")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	reopened, err := Open(storage.NewCredentialFile(path))
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if err := reopened.Login("alice", []byte("Secret1")); err != nil {
		t.Errorf("Login after reopen failed: %v", err)
	}
}

func TestVerifierEncodeParseRoundTrip(t *testing.T) {
	v, err := NewVerifier([]byte("pw"))
	if err != nil {
		t.Fatalf("NewVerifier failed: %v", err)
	}

	parsed, err := ParseVerifier(v.Encode())
	if err != nil {
		t.Fatalf("ParseVerifier failed: %v", err)
	}
	if !bytes.Equal(parsed.Salt, v.Salt) || !bytes.Equal(parsed.Hash, v.Hash) {
		t.Error("verifier round trip altered salt or hash")
	}
	if !parsed.Matches([]byte("pw")) {
		t.Error("parsed verifier does not match original password")
	}
}

func TestParseVerifierMalformed(t *testing.T) {
	for _, s := range []string{"", "nocolon", "a:b:c", "!!!:aGFzaA==", "c2FsdA==:!!!"} {
		if _, err := ParseVerifier(s); err == nil {
			t.Errorf("input %q: expected error", s)
		}
	}
}
