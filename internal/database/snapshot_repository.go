package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// snapshotKey is the fixed key the single progress snapshot lives under.
const snapshotKey = "state_v2"

// SnapshotRepository persists the serialized progress snapshot as one blob.
// It satisfies the progress.Store interface.
type SnapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository creates a new repository instance
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Load returns the stored snapshot blob, or (nil, nil) when none was ever
// saved.
func (r *SnapshotRepository) Load() ([]byte, error) {
	var value string
	err := r.db.Get(&value, "SELECT value FROM snapshots WHERE key = $1", snapshotKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %v", err)
	}
	return []byte(value), nil
}

// Save replaces the stored snapshot blob atomically.
func (r *SnapshotRepository) Save(data []byte) error {
	query := `
		INSERT INTO snapshots (key, value, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := r.db.Exec(query, snapshotKey, string(data)); err != nil {
		return fmt.Errorf("failed to save snapshot: %v", err)
	}
	return nil
}
