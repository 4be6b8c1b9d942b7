package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/soren-n/dusk/pkg/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch a directory tree for changes, marking the cache dirty as they arrive",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		target := ""
		if len(args) == 1 {
			target = args[0]
		}
		root, err := resolveRoot(target)
		if err != nil {
			return err
		}

		ctx := context.Background()
		store, err := openStore(ctx)
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		defer store.Close()

		rootID, err := store.ResolveRoot(ctx, root)
		if err != nil {
			return err
		}

		h := watcher.Spawn(root, watcher.DefaultConfig)
		defer h.Stop()

		fmt.Printf("watching %s (ctrl-c to stop)\n", root)
		for evt := range h.Events() {
			switch evt.Kind {
			case watcher.Dirty:
				relative, err := relativeToRoot(root, evt.Path)
				if err != nil {
					fmt.Printf("[%s] dirty (unresolvable path %s): %v\n", evt.Timestamp.Format(time.Kitchen), evt.Path, err)
					continue
				}
				if err := store.MarkAncestorsDirty(ctx, rootID, relative); err != nil {
					fmt.Printf("[%s] mark dirty failed for %s: %v\n", evt.Timestamp.Format(time.Kitchen), relative, err)
					continue
				}
				fmt.Printf("[%s] dirty: %s\n", evt.Timestamp.Format(time.Kitchen), relative)
			case watcher.Rescan:
				fmt.Printf("[%s] rescan requested\n", evt.Timestamp.Format(time.Kitchen))
			case watcher.Error:
				fmt.Printf("[%s] watcher error: %s\n", evt.Timestamp.Format(time.Kitchen), evt.Message)
			}
		}
		return nil
	},
}

// relativeToRoot converts an absolute watcher path into the forward-slash,
// root-relative form the cache keys on.
func relativeToRoot(root, absPath string) (string, error) {
	if absPath == root {
		return ".", nil
	}
	rel, err := filepath.Rel(root, absPath)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
