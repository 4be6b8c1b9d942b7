package cmd

import (
	"context"
	"fmt"

	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
)

// OpenerFunc opens a path with the OS default application. It is a
// package-level variable so tests can substitute a no-op.
var OpenerFunc = open.Run

var openCmd = &cobra.Command{
	Use:   "open [path]",
	Short: "Scan a directory, fuzzy-select one entry, and open it in the OS default application",
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

		picked, err := pickEntry(ctx, store, root)
		if err != nil {
			return err
		}
		return OpenerFunc(picked)
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}
