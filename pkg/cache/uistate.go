package cache

import (
	"context"
	"database/sql"
	"fmt"
)

// SaveUIState upserts the opaque UI payload for a root.
func (s *Store) SaveUIState(ctx context.Context, rootID int64, payload string, version int, updatedUTC int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ui_state (root_id, payload, version, updated_utc)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(root_id) DO UPDATE SET
			payload = excluded.payload,
			version = excluded.version,
			updated_utc = excluded.updated_utc
	`, rootID, payload, version, updatedUTC)
	if err != nil {
		return fmt.Errorf("cache: save ui state: %w", err)
	}
	return nil
}

// LoadUIState returns the payload and version saved for a root. ok is
// false if no state has ever been saved.
func (s *Store) LoadUIState(ctx context.Context, rootID int64) (payload string, version int, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, `SELECT payload, version FROM ui_state WHERE root_id = ?`, rootID)
	err = row.Scan(&payload, &version)
	if err == sql.ErrNoRows {
		return "", 0, false, nil
	}
	if err != nil {
		return "", 0, false, fmt.Errorf("cache: load ui state: %w", err)
	}
	return payload, version, true, nil
}
