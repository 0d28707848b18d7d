package cmd

import (
	"fmt"

	"github.com/live-labs/filelocker/internal/keyring"
)

// Forget removes a cached password from the OS keyring
func Forget(username string) {
	username = RequireUsername(username)

	if !keyring.HasPassword(username) {
		fmt.Println("No password stored in keyring")
		return
	}
	if err := keyring.DeletePassword(username); err != nil {
		fmt.Println("No password stored in keyring")
		return
	}
	fmt.Println("Password removed from keyring")
}
