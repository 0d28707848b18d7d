package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/live-labs/filelocker/cmd"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "register":
		runRegister(os.Args[2:])
	case "login":
		runLogin(os.Args[2:])
	case "upload":
		runUpload(os.Args[2:])
	case "download":
		runDownload(os.Args[2:])
	case "rm":
		runRm(os.Args[2:])
	case "ls":
		runLs(os.Args[2:])
	case "sweep":
		runSweep(os.Args[2:])
	case "forget":
		runForget(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// commonFlags registers the flags every command shares
func commonFlags(fs *flag.FlagSet) (root, backend, user *string) {
	root = fs.String("root", defaultRoot(), "Data root directory")
	backend = fs.String("backend", "file", "Index storage backend: file or bolt")
	user = fs.String("u", "", "Username (or set FILELOCKER_USER)")
	return
}

func defaultRoot() string {
	if root := os.Getenv("FILELOCKER_ROOT"); root != "" {
		return root
	}
	return "locker_data"
}

func parseOrExit(fs *flag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func runRegister(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	root, backend, user := commonFlags(fs)
	parseOrExit(fs, args)

	cmd.Register(cmd.Options{Root: *root, Backend: *backend}, *user)
}

func runLogin(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	root, backend, user := commonFlags(fs)
	remember := fs.Bool("remember", false, "Save the password to the OS keyring")
	parseOrExit(fs, args)

	cmd.Login(cmd.Options{Root: *root, Backend: *backend}, *user, *remember)
}

func runUpload(args []string) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	root, backend, user := commonFlags(fs)
	parseOrExit(fs, args)

	cmd.Upload(cmd.Options{Root: *root, Backend: *backend}, *user, fs.Arg(0))
}

func runDownload(args []string) {
	fs := flag.NewFlagSet("download", flag.ExitOnError)
	root, backend, user := commonFlags(fs)
	dest := fs.String("o", "", "Destination path (default: locker_downloads/<name>)")
	parseOrExit(fs, args)

	cmd.Download(cmd.Options{Root: *root, Backend: *backend}, *user, fs.Arg(0), *dest)
}

func runRm(args []string) {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	root, backend, user := commonFlags(fs)
	parseOrExit(fs, args)

	cmd.Remove(cmd.Options{Root: *root, Backend: *backend}, *user, fs.Arg(0))
}

func runLs(args []string) {
	fs := flag.NewFlagSet("ls", flag.ExitOnError)
	root, backend, user := commonFlags(fs)
	parseOrExit(fs, args)

	cmd.Ls(cmd.Options{Root: *root, Backend: *backend}, *user)
}

func runSweep(args []string) {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	root, backend, _ := commonFlags(fs)
	parseOrExit(fs, args)

	cmd.Sweep(cmd.Options{Root: *root, Backend: *backend})
}

func runForget(args []string) {
	fs := flag.NewFlagSet("forget", flag.ExitOnError)
	user := fs.String("u", "", "Username (or set FILELOCKER_USER)")
	parseOrExit(fs, args)

	cmd.Forget(*user)
}

func printUsage() {
	fmt.Println(`filelocker - per-user encrypted file storage

Usage: filelocker <command> [options]

Commands:
  register    Create a new user account
  login       Verify credentials (use -remember to cache the password)
  upload      Encrypt a local file into the locker
  download    Decrypt a stored file to a local path
  rm          Remove a stored file
  ls          List stored files for a user
  sweep       Reclaim unreferenced ciphertext blobs
  forget      Remove a cached password from the OS keyring

Common options:
  -root dir      Data root directory (default: locker_data, or FILELOCKER_ROOT)
  -backend name  Index storage backend: file or bolt (default: file)
  -u user        Username (or set FILELOCKER_USER)

The password is taken from FILELOCKER_PASSWORD, the OS keyring (after
'login -remember'), or an interactive prompt, in that order.`)
}
