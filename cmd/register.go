package cmd

import (
	"fmt"
	"os"

	"github.com/live-labs/filelocker/internal/crypto"
)

// Register creates a new user account
func Register(opts Options, username string) {
	username = RequireUsername(username)

	app := OpenAppOrExit(opts)
	defer app.Close()

	password := GetPasswordFromEnv()
	if password == nil {
		var err error
		password, err = ReadPasswordConfirm()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	}
	defer crypto.ClearBytes(password)

	if err := app.Creds.Register(username, password); err != nil {
		HandleError(err)
	}

	fmt.Printf("✓ Registered user %s\n", username)
}
