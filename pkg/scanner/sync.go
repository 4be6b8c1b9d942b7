package scanner

import (
	"fmt"

	"github.com/soren-n/dusk/pkg/diskentry"
	"github.com/soren-n/dusk/pkg/query"
)

// RunToCompletion drives a single scan through a fresh Handle and blocks
// until it completes, for callers that want a plain synchronous result
// instead of consuming the streaming protocol directly.
func RunToCompletion(q query.SearchQuery, scanTS int64, cacheCtx *CacheContext) ([]diskentry.Entry, Stats, error) {
	handle := Spawn()
	defer handle.Close()
	jobID := handle.RequestScan(q, scanTS, cacheCtx)

	var entries []diskentry.Entry
	var stats Stats
	for msg := range handle.Messages() {
		if msg.JobID != jobID {
			continue
		}
		switch msg.Kind {
		case EntryMsg:
			entries = append(entries, msg.Entry)
		case StatsMsg:
			stats = msg.Stats
		case Complete:
			return entries, stats, nil
		}
	}
	return entries, stats, fmt.Errorf("scanner: message stream closed before completion")
}
