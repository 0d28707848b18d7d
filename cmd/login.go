package cmd

import (
	"fmt"
	"os"

	"github.com/live-labs/filelocker/internal/crypto"
	"github.com/live-labs/filelocker/internal/keyring"
)

// Login verifies credentials and optionally caches the password in the OS
// keyring for later commands.
func Login(opts Options, username string, remember bool) {
	username = RequireUsername(username)

	app := OpenAppOrExit(opts)
	defer app.Close()

	password := GetPasswordFromEnv()
	if password == nil {
		var err error
		password, err = ReadPassword("Enter password: ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	}
	defer crypto.ClearBytes(password)

	if err := app.Creds.Login(username, password); err != nil {
		HandleError(err)
	}

	fmt.Printf("✓ Logged in as %s\n", username)

	if remember {
		if err := keyring.SavePassword(username, string(password)); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to save password to keyring: %s\n", err)
			return
		}
		fmt.Println("Password saved to keyring")
	}
}
