package cmd

import (
	"fmt"
)

// Sweep reclaims ciphertext blobs no index entry references
func Sweep(opts Options) {
	app := OpenAppOrExit(opts)
	defer app.Close()

	removed, err := app.Files.Sweep()
	if err != nil {
		HandleError(err)
	}

	if len(removed) == 0 {
		fmt.Println("No orphan blobs found")
		return
	}
	fmt.Printf("✓ Removed %d orphan blob(s)\n", len(removed))
}
