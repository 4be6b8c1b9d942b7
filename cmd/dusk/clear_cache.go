package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache [path]",
	Short: "Remove all cached entries for a root",
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

		cleared, err := store.ClearRoot(ctx, root)
		if err != nil {
			return err
		}
		if cleared {
			fmt.Printf("cleared cache for %s\n", root)
		} else {
			fmt.Printf("no cache entries found for %s\n", root)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCacheCmd)
}
