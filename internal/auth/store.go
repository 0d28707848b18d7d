package auth

import (
	"errors"
	"sync"

	"github.com/live-labs/filelocker/internal/storage"
)

var (
	ErrEmptyCredentials = errors.New("username and password must not be empty")
	ErrUserExists       = errors.New("username already exists")

	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password. The two causes are never distinguished to the caller.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Store verifies and registers user credentials. The whole credential index
// lives in memory and is rewritten in full on every mutation; a single lock
// serializes each read-modify-persist sequence.
type Store struct {
	mu    sync.Mutex
	repo  storage.CredentialRepository
	users storage.Credentials
}

// Open loads the credential index from the repository
func Open(repo storage.CredentialRepository) (*Store, error) {
	users, err := repo.Load()
	if err != nil {
		return nil, err
	}
	return &Store{repo: repo, users: users}, nil
}

// Register creates a new user with a fresh salted verifier and persists the
// index. It returns ErrUserExists if the username is taken; there is no
// overwrite or update path.
func (s *Store) Register(username string, password []byte) error {
	if username == "" || len(password) == 0 {
		return ErrEmptyCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; ok {
		return ErrUserExists
	}

	verifier, err := NewVerifier(password)
	if err != nil {
		return err
	}

	s.users[username] = verifier.Encode()
	if err := s.repo.Save(s.users); err != nil {
		// Keep memory consistent with disk.
		delete(s.users, username)
		return err
	}
	return nil
}

// Login checks a username/password pair against the stored verifier
func (s *Store) Login(username string, password []byte) error {
	if username == "" || len(password) == 0 {
		return ErrEmptyCredentials
	}

	s.mu.Lock()
	stored, ok := s.users[username]
	s.mu.Unlock()

	if !ok {
		return ErrInvalidCredentials
	}

	verifier, err := ParseVerifier(stored)
	if err != nil {
		return err
	}
	if !verifier.Matches(password) {
		return ErrInvalidCredentials
	}
	return nil
}
