package prefs

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gpt-relay-bot/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is the default preference backend: one table keyed by user_id
// with upsert-on-conflict semantics.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and creates if needed) the preference database
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite path must not be empty")
	}

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func createSchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id INTEGER PRIMARY KEY,
	language TEXT NOT NULL
);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Save upserts the user's language: insert if absent, overwrite if present.
func (s *SQLiteStore) Save(ctx context.Context, userID int64, lang models.Language) error {
	const query = `
INSERT INTO users (user_id, language) VALUES (?, ?)
ON CONFLICT(user_id) DO UPDATE SET language = excluded.language`

	if _, err := s.db.ExecContext(ctx, query, userID, string(lang)); err != nil {
		return fmt.Errorf("failed to upsert language: %w", err)
	}
	return nil
}

// Statistics aggregates language counts across all users.
func (s *SQLiteStore) Statistics(ctx context.Context) ([]models.LanguageStat, error) {
	const query = `
SELECT language, COUNT(*) AS count
FROM users
GROUP BY language
ORDER BY count DESC, language ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query statistics: %w", err)
	}
	defer rows.Close()

	var stats []models.LanguageStat
	for rows.Next() {
		var (
			lang  string
			count int
		)
		if err := rows.Scan(&lang, &count); err != nil {
			return nil, fmt.Errorf("failed to scan statistics row: %w", err)
		}
		stats = append(stats, models.LanguageStat{Language: models.Language(lang), Count: count})
	}
	return stats, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
