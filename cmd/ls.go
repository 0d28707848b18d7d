package cmd

import (
	"fmt"
	"sort"
)

// Ls lists the files stored for a user
func Ls(opts Options, username string) {
	username = RequireUsername(username)

	app := OpenAppOrExit(opts)
	defer app.Close()

	names := app.Files.List(username)
	if len(names) == 0 {
		fmt.Println("No files in the locker")
		return
	}

	sort.Strings(names)
	fmt.Printf("Files for %s:\n", username)
	for _, name := range names {
		fmt.Printf("  %s\n", name)
	}
}
