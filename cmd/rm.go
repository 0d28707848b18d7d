package cmd

import (
	"fmt"
	"os"

	"github.com/live-labs/filelocker/internal/crypto"
)

// Remove deletes a stored file and its index entry
func Remove(opts Options, username, fileName string) {
	username = RequireUsername(username)
	if fileName == "" {
		fmt.Fprintln(os.Stderr, "Error: rm requires a file name")
		fmt.Fprintln(os.Stderr, "Usage: filelocker rm [-u user] <name>")
		os.Exit(1)
	}

	app := OpenAppOrExit(opts)
	defer app.Close()

	password := GetPasswordOrExit(username, "Enter password: ")
	defer crypto.ClearBytes(password)

	if err := app.Creds.Login(username, password); err != nil {
		HandleError(err)
	}

	if err := app.Files.Delete(username, fileName); err != nil {
		HandleError(err)
	}

	fmt.Printf("✓ Removed %s\n", fileName)
}
