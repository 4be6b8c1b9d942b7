package cmd

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/soren-n/dusk/pkg/cache"
	"github.com/soren-n/dusk/pkg/query"
	"github.com/soren-n/dusk/pkg/scanner"
)

// pickedEntry is one line offered to the fuzzy finder.
type pickedEntry struct {
	label string
	path  string
}

// pickEntry scans root, lets the user fuzzy-select one entry, and returns
// its absolute path.
func pickEntry(ctx context.Context, store *cache.Store, root string) (string, error) {
	q := query.SearchQuery{Raw: root, Root: root}

	var cacheCtx *scanner.CacheContext
	if store != nil {
		rootID, err := store.ResolveRoot(ctx, root)
		if err != nil {
			return "", err
		}
		cacheCtx = &scanner.CacheContext{Store: store, RootID: rootID}
	}

	entries, _, err := scanner.RunToCompletion(q, time.Now().Unix(), cacheCtx)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", errors.New("no entries found under root")
	}

	picks := make([]pickedEntry, 0, len(entries))
	for _, e := range entries {
		picks = append(picks, pickedEntry{
			label: fmt.Sprintf("%-60s %10d bytes", e.Relative, e.AggregateSize),
			path:  e.Path,
		})
	}
	sort.Slice(picks, func(i, j int) bool { return picks[i].label < picks[j].label })

	idx, err := fuzzyfinder.Find(picks, func(i int) string { return picks[i].label })
	if err != nil {
		return "", err
	}
	return picks[idx].path, nil
}
