package cmd

import (
	"fmt"
	"os"

	"github.com/live-labs/filelocker/internal/crypto"
)

// Upload encrypts a local file into the locker
func Upload(opts Options, username, sourcePath string) {
	username = RequireUsername(username)
	if sourcePath == "" {
		fmt.Fprintln(os.Stderr, "Error: upload requires a file argument")
		fmt.Fprintln(os.Stderr, "Usage: filelocker upload [-u user] <file>")
		os.Exit(1)
	}

	app := OpenAppOrExit(opts)
	defer app.Close()

	password := GetPasswordOrExit(username, "Enter password: ")
	defer crypto.ClearBytes(password)

	if err := app.Creds.Login(username, password); err != nil {
		HandleError(err)
	}

	fileName, err := app.Files.Upload(username, password, sourcePath)
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("✓ Uploaded %s\n", fileName)
}
