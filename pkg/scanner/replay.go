package scanner

import (
	"context"
	"errors"
	"path"
	"time"

	"github.com/soren-n/dusk/pkg/cache"
	"github.com/soren-n/dusk/pkg/diskentry"
)

// tryCachedReplay evaluates the cached-subtree-replay gate for a directory
// about to be descended into. It returns (true, aggregateTotal) if the
// cached subtree was replayed in full (so the caller should skip the
// filesystem descent); otherwise (false, 0) and the caller falls through to
// a normal walk of this subtree, after marking ancestors dirty if the
// failure was a validation error rather than a plain cache miss.
func (h *Handle) tryCachedReplay(ctx context.Context, cmd Command, sess *cache.Session, dirEntry diskentry.Entry, stats *Stats) (bool, uint64) {
	store := cmd.CacheCtx.Store
	rootID := cmd.CacheCtx.RootID

	row, err := store.Entry(ctx, rootID, dirEntry.Relative)
	if err != nil {
		return false, 0
	}
	if row.Dirty() {
		return false, 0
	}
	if row.MtimeUTC != dirEntry.Modified.Unix() {
		return false, 0
	}

	var replayStats replayAccumulator
	total, err := h.emitCachedSubtree(ctx, cmd, sess, row, &replayStats)
	if err != nil {
		var verr *cache.ValidationError
		if errors.As(err, &verr) {
			store.MarkAncestorsDirty(ctx, rootID, dirEntry.Relative)
		}
		return false, 0
	}

	for _, msg := range replayStats.pending {
		h.messages <- msg
	}
	stats.CachedDirs += replayStats.dirs
	stats.CachedEntries += replayStats.entries
	stats.CachedBytes += replayStats.bytes
	return true, total
}

type replayAccumulator struct {
	dirs, entries, bytes uint64
	pending              []Message // entry messages, sent only once the whole replay succeeds
}

// emitCachedSubtree recursively replays row and its cached descendants,
// verifying I1 as it unwinds. A mismatch anywhere in the subtree aborts the
// whole replay; its entry messages are collected in acc and never sent.
func (h *Handle) emitCachedSubtree(ctx context.Context, cmd Command, sess *cache.Session, row cache.Row, acc *replayAccumulator) (uint64, error) {
	store := cmd.CacheCtx.Store
	rootID := cmd.CacheCtx.RootID

	absPath := absoluteFromRelative(cmd.Query.Root, row.Relative)
	acc.entries++

	if shouldInclude(cmd.Query, absPath, row.Relative, row.Kind, row.DirectSize) {
		acc.pending = append(acc.pending, Message{Kind: EntryMsg, JobID: cmd.JobID, Entry: rowToEntry(row, absPath)})
	}

	if sess != nil {
		if err := sess.UpsertCachedRow(ctx, row); err != nil {
			return 0, err
		}
	}

	if row.Kind != diskentry.Directory {
		acc.bytes += row.DirectSize
		return row.DirectSize, nil
	}
	acc.dirs++

	children, err := store.ChildrenOf(ctx, rootID, row.Relative)
	if err != nil {
		return 0, err
	}

	var childTotal uint64
	for _, child := range children {
		total, err := h.emitCachedSubtree(ctx, cmd, sess, child, acc)
		if err != nil {
			return 0, err
		}
		childTotal += total
	}

	computed := row.DirectSize + childTotal
	if computed != row.AggregateSize {
		return 0, &cache.ValidationError{
			Path: row.Relative,
			Err: &cache.AggregateMismatchError{
				Path:     row.Relative,
				Stored:   row.AggregateSize,
				Computed: computed,
			},
		}
	}
	return row.AggregateSize, nil
}

func absoluteFromRelative(root, relative string) string {
	if relative == "." {
		return root
	}
	return path.Join(root, relative)
}

func rowToEntry(row cache.Row, absPath string) diskentry.Entry {
	e := diskentry.Entry{
		Path:          absPath,
		Relative:      row.Relative,
		FileName:      path.Base(row.Relative),
		Kind:          row.Kind,
		DirectSize:    row.DirectSize,
		AggregateSize: row.AggregateSize,
		Modified:      time.Unix(row.MtimeUTC, 0),
		Created:       time.Unix(row.CtimeUTC, 0),
	}
	if row.Relative == "." {
		e.FileName = path.Base(absPath)
	}
	return e
}
