package cache

import (
	"context"
	"fmt"
	"path"
)

// MarkDirty ORs bit 0 into a single entry's flags.
func (s *Store) MarkDirty(ctx context.Context, rootID int64, relative string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE entries SET flags = flags | 1 WHERE root_id = ? AND relative_path = ?`, rootID, relative)
	if err != nil {
		return fmt.Errorf("cache: mark dirty %s: %w", relative, err)
	}
	return nil
}

// MarkAncestorsDirty marks relative and every ancestor up to and including
// "." dirty. A level with no matching row is simply skipped; traversal
// continues upward regardless.
func (s *Store) MarkAncestorsDirty(ctx context.Context, rootID int64, relative string) error {
	current := relative
	for {
		if err := s.MarkDirty(ctx, rootID, current); err != nil {
			return err
		}
		if current == "." {
			return nil
		}
		parent := path.Dir(current)
		if parent == "." || parent == "" || parent == current {
			current = "."
		} else {
			current = parent
		}
	}
}
