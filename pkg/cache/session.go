package cache

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/soren-n/dusk/pkg/diskentry"
)

// Session is a single scan's write transaction. Upsert refreshes
// last-seen/aggregate state for entries the walk actually observed; Finish
// commits and deletes whatever wasn't seen, satisfying the last-seen
// invariant. Abort rolls the transaction back; the scanner calls it instead
// of Finish when a scan is preempted, which is how a preempted scan leaves
// the cache untouched. A Session dropped without Finish or Abort keeps its
// transaction open.
type Session struct {
	store  *Store
	tx     *sql.Tx
	rootID int64
	scanTS int64
	done   bool
}

// BeginScan opens a write session for rootID stamped with scanTS (a Unix
// timestamp supplied by the caller, since this package never reads the
// system clock itself).
func (s *Store) BeginScan(ctx context.Context, rootID int64, scanTS int64) (*Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("cache: begin scan: %w", err)
	}
	return &Session{store: s, tx: tx, rootID: rootID, scanTS: scanTS}, nil
}

// Upsert inserts or refreshes one entry. On conflict it clears the dirty
// bit (flags=0) and refreshes last_seen to this session's scanTS, per I4.
func (sess *Session) Upsert(ctx context.Context, e diskentry.Entry, parent string, hasParent bool) error {
	var parentArg any
	if hasParent {
		parentArg = parent
	}
	_, err := sess.tx.ExecContext(ctx, `
		INSERT INTO entries (root_id, relative_path, parent_path, has_parent, kind, direct_size,
			aggregate_size, mtime_utc, ctime_utc, last_seen_utc, flags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(root_id, relative_path) DO UPDATE SET
			parent_path = excluded.parent_path,
			has_parent = excluded.has_parent,
			kind = excluded.kind,
			direct_size = excluded.direct_size,
			aggregate_size = excluded.aggregate_size,
			mtime_utc = excluded.mtime_utc,
			ctime_utc = excluded.ctime_utc,
			last_seen_utc = excluded.last_seen_utc,
			flags = 0
	`, sess.rootID, e.Relative, parentArg, boolToInt(hasParent), int(e.Kind), e.DirectSize,
		e.AggregateSize, e.Modified.Unix(), e.Created.Unix(), sess.scanTS)
	if err != nil {
		return fmt.Errorf("cache: upsert %s: %w", e.Relative, err)
	}
	return nil
}

// UpsertCachedRow re-upserts a row read straight from the cache (used by
// cached-subtree replay), preserving its aggregate size and refreshing
// last_seen so Finish does not prune it.
func (sess *Session) UpsertCachedRow(ctx context.Context, r Row) error {
	var parentArg any
	if r.HasParent {
		parentArg = r.Parent
	}
	_, err := sess.tx.ExecContext(ctx, `
		INSERT INTO entries (root_id, relative_path, parent_path, has_parent, kind, direct_size,
			aggregate_size, mtime_utc, ctime_utc, last_seen_utc, flags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(root_id, relative_path) DO UPDATE SET
			parent_path = excluded.parent_path,
			has_parent = excluded.has_parent,
			kind = excluded.kind,
			direct_size = excluded.direct_size,
			aggregate_size = excluded.aggregate_size,
			mtime_utc = excluded.mtime_utc,
			ctime_utc = excluded.ctime_utc,
			last_seen_utc = excluded.last_seen_utc,
			flags = 0
	`, sess.rootID, r.Relative, parentArg, boolToInt(r.HasParent), int(r.Kind), r.DirectSize,
		r.AggregateSize, r.MtimeUTC, r.CtimeUTC, sess.scanTS)
	if err != nil {
		return fmt.Errorf("cache: upsert cached %s: %w", r.Relative, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Abort rolls back the session's transaction. Safe to call after Finish
// (no-op).
func (sess *Session) Abort() error {
	if sess.done {
		return nil
	}
	sess.done = true
	return sess.tx.Rollback()
}

// Finish deletes every row under this root not seen during this session,
// updates the root's scan bookkeeping, and commits. It triggers pruning
// when the configured age/interval/count conditions are met.
func (sess *Session) Finish(ctx context.Context) error {
	if sess.done {
		return fmt.Errorf("cache: session already finished")
	}

	if _, err := sess.tx.ExecContext(ctx,
		`DELETE FROM entries WHERE root_id = ? AND last_seen_utc != ?`, sess.rootID, sess.scanTS); err != nil {
		sess.Abort()
		return fmt.Errorf("cache: prune unseen: %w", err)
	}

	var lastPruned, scanCount int64
	row := sess.tx.QueryRowContext(ctx, `SELECT last_pruned_utc, scan_count FROM roots WHERE id = ?`, sess.rootID)
	if err := row.Scan(&lastPruned, &scanCount); err != nil {
		sess.Abort()
		return fmt.Errorf("cache: read root: %w", err)
	}
	scanCount++

	if _, err := sess.tx.ExecContext(ctx,
		`UPDATE roots SET last_scan_utc = ?, scan_count = ? WHERE id = ?`, sess.scanTS, scanCount, sess.rootID); err != nil {
		sess.Abort()
		return fmt.Errorf("cache: update root: %w", err)
	}

	if shouldPrune(sess.scanTS, lastPruned, scanCount) {
		if err := sess.prune(ctx); err != nil {
			sess.Abort()
			return err
		}
	}

	sess.done = true
	if err := sess.tx.Commit(); err != nil {
		return fmt.Errorf("cache: commit: %w", err)
	}
	return nil
}

func shouldPrune(scanTS, lastPruned, scanCount int64) bool {
	if scanTS <= lastPruned {
		return true
	}
	if scanTS-lastPruned >= 3600 {
		return true
	}
	return scanCount%5 == 0
}

// prune removes entries older than pruneMaxAge, then — if the database file
// still exceeds pruneMaxBytes — deletes the oldest-last_seen rows for this
// root in batches until under the ceiling or empty.
func (sess *Session) prune(ctx context.Context) error {
	cutoff := sess.scanTS - pruneMaxAge
	if _, err := sess.tx.ExecContext(ctx,
		`DELETE FROM entries WHERE root_id = ? AND last_seen_utc < ?`, sess.rootID, cutoff); err != nil {
		return fmt.Errorf("cache: prune by age: %w", err)
	}

	for {
		size, err := fileSize(sess.store.path)
		if err != nil {
			logger.Printf("prune: stat cache file: %v", err)
			break
		}
		if size <= pruneMaxBytes {
			break
		}
		res, err := sess.tx.ExecContext(ctx, `
			DELETE FROM entries WHERE rowid IN (
				SELECT rowid FROM entries WHERE root_id = ? ORDER BY last_seen_utc ASC LIMIT ?
			)`, sess.rootID, pruneBatchSize)
		if err != nil {
			return fmt.Errorf("cache: prune by size: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil || n == 0 {
			break
		}
	}

	if _, err := sess.tx.ExecContext(ctx,
		`UPDATE roots SET last_pruned_utc = ? WHERE id = ?`, sess.scanTS, sess.rootID); err != nil {
		return fmt.Errorf("cache: stamp last_pruned: %w", err)
	}
	return nil
}
