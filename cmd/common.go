package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/live-labs/filelocker/internal/auth"
	"github.com/live-labs/filelocker/internal/crypto"
	"github.com/live-labs/filelocker/internal/locker"
	"github.com/live-labs/filelocker/internal/security"
	"github.com/live-labs/filelocker/internal/storage"
)

// On-disk layout under the data root
const (
	CredentialFileName = "users.json"
	IndexFileName      = "index.json"
	BoltFileName       = "locker.db"
	BlobDirName        = "files"

	// DefaultDownloadDir receives downloads when no destination is given
	DefaultDownloadDir = "locker_downloads"
)

// Options selects where and how locker state is stored
type Options struct {
	Root    string // data root directory
	Backend string // "file" (default) or "bolt"
}

// App wires the credential store and the object store over a shared root
type App struct {
	Creds *auth.Store
	Files *locker.Locker

	blobs *security.BlobDir
	bolt  *storage.BoltStore
}

// OpenApp bootstraps the data root and opens both stores
func OpenApp(opts Options) (*App, error) {
	if err := os.MkdirAll(opts.Root, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data root: %w", err)
	}

	blobs, err := security.Open(filepath.Join(opts.Root, BlobDirName))
	if err != nil {
		return nil, err
	}

	var (
		credRepo  storage.CredentialRepository
		indexRepo storage.IndexRepository
		bolt      *storage.BoltStore
	)
	switch opts.Backend {
	case "", "file":
		credRepo = storage.NewCredentialFile(filepath.Join(opts.Root, CredentialFileName))
		indexRepo = storage.NewIndexFile(filepath.Join(opts.Root, IndexFileName))
	case "bolt":
		bolt, err = storage.OpenBolt(filepath.Join(opts.Root, BoltFileName))
		if err != nil {
			blobs.Close()
			return nil, err
		}
		credRepo = bolt.Credentials()
		indexRepo = bolt.Index()
	default:
		blobs.Close()
		return nil, fmt.Errorf("unknown backend %q (want file or bolt)", opts.Backend)
	}

	creds, err := auth.Open(credRepo)
	if err == nil {
		var files *locker.Locker
		files, err = locker.Open(indexRepo, blobs)
		if err == nil {
			return &App{Creds: creds, Files: files, blobs: blobs, bolt: bolt}, nil
		}
	}

	blobs.Close()
	if bolt != nil {
		bolt.Close()
	}
	return nil, err
}

// Close releases the app's resources
func (a *App) Close() error {
	err := a.blobs.Close()
	if a.bolt != nil {
		if cerr := a.bolt.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// OpenAppOrExit is like OpenApp but exits on error
func OpenAppOrExit(opts Options) *App {
	app, err := OpenApp(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	return app
}

// HandleError renders an error for the user and exits. Outcomes are
// translated without leaking which cause occurred beyond the stated
// taxonomy.
func HandleError(err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		fmt.Fprintln(os.Stderr, "Error: invalid username or password")
	case errors.Is(err, auth.ErrUserExists):
		fmt.Fprintln(os.Stderr, "Error: username already exists")
	case errors.Is(err, auth.ErrEmptyCredentials):
		fmt.Fprintln(os.Stderr, "Error: username and password must not be empty")
	case errors.Is(err, locker.ErrNotFound):
		fmt.Fprintln(os.Stderr, "Error: no such file in the locker")
	case errors.Is(err, locker.ErrInconsistent):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	case errors.Is(err, crypto.ErrAuthFailed):
		fmt.Fprintln(os.Stderr, "Error: decryption failed: wrong password or corrupted file")
	case errors.Is(err, crypto.ErrInvalidBlob):
		fmt.Fprintln(os.Stderr, "Error: stored file is malformed")
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(1)
}

// RequireUsername resolves the acting username from the -u flag or the
// FILELOCKER_USER environment variable.
func RequireUsername(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if user := os.Getenv("FILELOCKER_USER"); user != "" {
		return user
	}
	fmt.Fprintln(os.Stderr, "Error: username required (use -u or FILELOCKER_USER)")
	os.Exit(1)
	return ""
}
