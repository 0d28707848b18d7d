package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/live-labs/filelocker/internal/crypto"
)

// Download decrypts a stored file to a local path. With no destination the
// file lands in the downloads directory under its original name.
func Download(opts Options, username, fileName, destPath string) {
	username = RequireUsername(username)
	if fileName == "" {
		fmt.Fprintln(os.Stderr, "Error: download requires a file name")
		fmt.Fprintln(os.Stderr, "Usage: filelocker download [-u user] [-o dest] <name>")
		os.Exit(1)
	}

	if destPath == "" {
		if err := os.MkdirAll(DefaultDownloadDir, 0700); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create download directory: %s\n", err)
			os.Exit(1)
		}
		destPath = filepath.Join(DefaultDownloadDir, fileName)
	}

	app := OpenAppOrExit(opts)
	defer app.Close()

	password := GetPasswordOrExit(username, "Enter password: ")
	defer crypto.ClearBytes(password)

	if err := app.Creds.Login(username, password); err != nil {
		HandleError(err)
	}

	if err := app.Files.Download(username, password, fileName, destPath); err != nil {
		HandleError(err)
	}

	fmt.Printf("✓ Downloaded %s to %s\n", fileName, destPath)
}
