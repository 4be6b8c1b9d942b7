package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var pickCmd = &cobra.Command{
	Use:   "pick [path]",
	Short: "Scan a directory and fuzzy-select one entry, printing its absolute path",
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
		fmt.Println(picked)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pickCmd)
}
