package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/tapspeak/pkg/models"
)

// WordRepository handles database operations for the word catalog
type WordRepository struct {
	db *sqlx.DB
}

// NewWordRepository creates a new repository instance
func NewWordRepository(db *sqlx.DB) *WordRepository {
	return &WordRepository{db: db}
}

// GetByID returns a single catalog entry, or (nil, nil) when absent.
func (r *WordRepository) GetByID(id string) (*models.Word, error) {
	var word models.Word
	err := r.db.Get(&word, "SELECT * FROM words WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word: %v", err)
	}
	return &word, nil
}

// All returns every catalog entry ordered by id.
func (r *WordRepository) All() ([]models.Word, error) {
	var words []models.Word
	err := r.db.Select(&words, "SELECT * FROM words ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list words: %v", err)
	}
	return words, nil
}

// IDs returns every catalog word id ordered by id. This is the candidate
// set the due query intersects against.
func (r *WordRepository) IDs() ([]string, error) {
	var ids []string
	err := r.db.Select(&ids, "SELECT id FROM words ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list word ids: %v", err)
	}
	return ids, nil
}

// Upsert inserts or updates a catalog entry. The bool reports whether a new
// row was created.
func (r *WordRepository) Upsert(word *models.Word) (bool, error) {
	existing, err := r.GetByID(word.ID)
	if err != nil {
		return false, err
	}
	query := `
		INSERT INTO words (id, label, translation, topic)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			label = excluded.label,
			translation = excluded.translation,
			topic = excluded.topic
	`
	if _, err := r.db.Exec(query, word.ID, word.Label, word.Translation, word.Topic); err != nil {
		return false, fmt.Errorf("failed to upsert word: %v", err)
	}
	return existing == nil, nil
}
