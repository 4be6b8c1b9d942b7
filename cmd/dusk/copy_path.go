package cmd

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

var copyPathCmd = &cobra.Command{
	Use:   "copy-path [path]",
	Short: "Scan a directory, fuzzy-select one entry, and copy its absolute path to the clipboard",
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
		if err := clipboard.WriteAll(picked); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		fmt.Printf("copied %s\n", picked)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(copyPathCmd)
}
