package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/soren-n/dusk/pkg/cache"
	"github.com/soren-n/dusk/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:     "dusk",
	Short:   "dusk - interactive disk-usage inspector",
	Version: "v0.1.0",
	Long:    "dusk - scan a directory tree, cache its sizes, and watch it for changes",
}

// Execute runs the CLI, exiting the process on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dusk: %v\n", err)
		os.Exit(1)
	}
}

// openStore opens the shared SQLite cache, creating its directory on first
// use.
func openStore(ctx context.Context) (*cache.Store, error) {
	_, dbFile, err := config.CacheDBPath()
	if err != nil {
		return nil, err
	}
	return cache.Open(ctx, dbFile)
}

// resolveRoot turns a user-supplied path (possibly empty, meaning the
// current directory) into an absolute, cleaned path.
func resolveRoot(arg string) (string, error) {
	if arg == "" {
		arg = "."
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("resolve root %q: %w", arg, err)
	}
	return abs, nil
}
