package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Connect opens the configured database and initializes the schema.
// DB_TYPE selects the backend: "sqlite" (default, file path from DB_PATH)
// or "postgres" (connection string from DATABASE_URL).
func Connect() (*sqlx.DB, error) {
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "sqlite"
	}

	var db *sqlx.DB
	var err error

	switch dbType {
	case "sqlite":
		dbPath := os.Getenv("DB_PATH")
		if dbPath == "" {
			dataDir := "data"
			if mkErr := os.MkdirAll(dataDir, 0755); mkErr != nil {
				return nil, fmt.Errorf("failed to create data directory: %v", mkErr)
			}
			dbPath = filepath.Join(dataDir, "tapspeak.db")
		}
		db, err = sqlx.Connect("sqlite3", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %v", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	case "postgres":
		url := os.Getenv("DATABASE_URL")
		if url == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
		}
		db, err = sqlx.Connect("postgres", url)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %v", err)
		}
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE: %s", dbType)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	// Snapshots table: one JSON state blob per key
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create snapshots table: %v", err)
	}

	// Word catalog table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS words (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			translation TEXT DEFAULT '',
			topic TEXT DEFAULT ''
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create words table: %v", err)
	}

	return nil
}
