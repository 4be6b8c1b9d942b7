package cache

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/soren-n/dusk/pkg/diskentry"
)

func (s *Store) queryRows(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("cache: query: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRow(rows *sql.Rows) (Row, error) {
	var (
		r         Row
		parent    sql.NullString
		hasParent int
		kind      int
	)
	if err := rows.Scan(&r.RootID, &r.Relative, &parent, &hasParent, &kind,
		&r.DirectSize, &r.AggregateSize, &r.MtimeUTC, &r.CtimeUTC, &r.LastSeenUTC, &r.Flags); err != nil {
		return Row{}, fmt.Errorf("cache: scan row: %w", err)
	}
	r.Parent = parent.String
	r.HasParent = hasParent != 0
	r.Kind = diskentry.Kind(kind)
	return r, nil
}

// Entry looks up a single cached entry. It returns ErrMissingEntry if none
// exists.
func (s *Store) Entry(ctx context.Context, rootID int64, relative string) (Row, error) {
	rows, err := s.queryRows(ctx, `SELECT root_id, relative_path, parent_path, has_parent, kind, direct_size,
		aggregate_size, mtime_utc, ctime_utc, last_seen_utc, flags FROM entries WHERE root_id = ? AND relative_path = ?`,
		rootID, relative)
	if err != nil {
		return Row{}, err
	}
	if len(rows) == 0 {
		return Row{}, ErrMissingEntry
	}
	return rows[0], nil
}

// EntriesForRoot returns every row stored for rootID.
func (s *Store) EntriesForRoot(ctx context.Context, rootID int64) ([]Row, error) {
	return s.allEntries(ctx, rootID)
}

// ChildrenOf returns the immediate children of parent (use "." for the
// root's own children).
func (s *Store) ChildrenOf(ctx context.Context, rootID int64, parent string) ([]Row, error) {
	return s.queryRows(ctx, `SELECT root_id, relative_path, parent_path, has_parent, kind, direct_size,
		aggregate_size, mtime_utc, ctime_utc, last_seen_utc, flags FROM entries
		WHERE root_id = ? AND has_parent = 1 AND parent_path = ?`, rootID, parent)
}
