package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/soren-n/dusk/pkg/config"
	"github.com/soren-n/dusk/pkg/query"
	"github.com/soren-n/dusk/pkg/scanner"
)

var (
	scanPattern     string
	scanNoCache     bool
	scanSizeOp      string
	scanSizeBytes   uint64
	scanSaveDefault bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a directory tree and print matching entries with their sizes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		prefs, err := config.LoadPreferences()
		if err != nil {
			return fmt.Errorf("load preferences: %w", err)
		}

		target := ""
		if len(args) == 1 {
			target = args[0]
		} else {
			target = prefs.DefaultRoot
		}
		root, err := resolveRoot(target)
		if err != nil {
			return err
		}

		ctx := context.Background()
		q := query.SearchQuery{Raw: root, Root: root}
		if scanPattern != "" {
			q.RelativePattern = &scanPattern
		}

		if filter, ok := parseSizeFlags(scanSizeOp, scanSizeBytes); ok {
			q.SizeFilter = &filter
		} else if filter, ok := prefs.SizeFilter(); ok {
			q.SizeFilter = &filter
		}

		if scanSaveDefault {
			prefs.DefaultRoot = root
			// A filter taken from preferences is already stored there.
			if _, ok := parseSizeFlags(scanSizeOp, scanSizeBytes); ok {
				prefs.DefaultSizeOperator = scanSizeOp
				prefs.DefaultSizeBytes = scanSizeBytes
			}
			if err := config.SavePreferences(prefs); err != nil {
				return fmt.Errorf("save preferences: %w", err)
			}
		}

		var cacheCtx *scanner.CacheContext
		if !scanNoCache {
			store, err := openStore(ctx)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer store.Close()
			rootID, err := store.ResolveRoot(ctx, root)
			if err != nil {
				return err
			}
			cacheCtx = &scanner.CacheContext{Store: store, RootID: rootID}
		}

		entries, stats, err := scanner.RunToCompletion(q, time.Now().Unix(), cacheCtx)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%-10s %10s  %s\n", e.Kind, humanize.IBytes(e.AggregateSize), e.Relative)
		}
		fmt.Printf("\nfiles=%d dirs=%d cachedDirs=%d cachedEntries=%d cachedBytes=%s fsErrors=%d validationErrors=%d\n",
			stats.FilesScanned, stats.DirsScanned, stats.CachedDirs, stats.CachedEntries,
			humanize.IBytes(stats.CachedBytes), stats.FsErrors, stats.CacheValidationErrors)
		return nil
	},
}

// parseSizeFlags maps the closed --size-operator vocabulary to a
// query.SizeFilter, mirroring the MCP scan_directory tool's argument
// parsing. An empty operator means "no flag given, defer to preferences".
func parseSizeFlags(op string, bytes uint64) (query.SizeFilter, bool) {
	var operator query.SizeOperator
	switch op {
	case "gt":
		operator = query.GreaterThan
	case "gte":
		operator = query.GreaterThanOrEqual
	case "lt":
		operator = query.LessThan
	case "lte":
		operator = query.LessThanOrEqual
	default:
		return query.SizeFilter{}, false
	}
	return query.SizeFilter{Operator: operator, Bytes: bytes}, true
}

func init() {
	scanCmd.Flags().StringVar(&scanPattern, "pattern", "", "glob pattern restricting reported files")
	scanCmd.Flags().BoolVar(&scanNoCache, "no-cache", false, "scan without consulting or updating the persistent cache")
	scanCmd.Flags().StringVar(&scanSizeOp, "size-operator", "", "size comparison: gt, gte, lt, or lte")
	scanCmd.Flags().Uint64Var(&scanSizeBytes, "size-bytes", 0, "byte threshold paired with --size-operator")
	scanCmd.Flags().BoolVar(&scanSaveDefault, "save-default", false, "persist this root and size filter as the default for future scans")
	rootCmd.AddCommand(scanCmd)
}
