package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings.
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// WAL mode for better concurrency between logger and readers
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return db, nil
}

// NewSQLiteStore creates a SQLite-backed search log at dbPath, applying
// any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Log appends an entry and prunes the log to MaxEntries rows.
func (s *SQLiteStore) Log(ctx context.Context, entry *Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.Mode == "" {
		entry.Mode = ModeRegex
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO search_logs (pattern, mode, match_count, source, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, entry.Pattern, string(entry.Mode), entry.MatchCount, entry.Source, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to log search: %w", err)
	}
	if id, err := result.LastInsertId(); err == nil {
		entry.ID = id
	}

	return s.prune(ctx)
}

// prune deletes everything but the newest MaxEntries rows.
func (s *SQLiteStore) prune(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM search_logs WHERE id NOT IN (
			SELECT id FROM search_logs ORDER BY id DESC LIMIT ?
		)
	`, MaxEntries)
	if err != nil {
		return fmt.Errorf("failed to prune search log: %w", err)
	}
	return nil
}

// Recent returns the newest entries, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.queryEntries(ctx, `
		SELECT id, pattern, mode, match_count, source, timestamp
		FROM search_logs ORDER BY id DESC LIMIT ?
	`, limit)
}

// All returns every retained entry, newest first.
func (s *SQLiteStore) All(ctx context.Context) ([]*Entry, error) {
	return s.queryEntries(ctx, `
		SELECT id, pattern, mode, match_count, source, timestamp
		FROM search_logs ORDER BY id DESC
	`)
}

func (s *SQLiteStore) queryEntries(ctx context.Context, query string, args ...interface{}) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query search log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		var mode string
		var source sql.NullString
		if err := rows.Scan(&e.ID, &e.Pattern, &mode, &e.MatchCount, &source, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Mode = Mode(mode)
		if source.Valid {
			e.Source = source.String
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// TopPatterns returns the most frequently searched patterns, most
// frequent first.
func (s *SQLiteStore) TopPatterns(ctx context.Context, limit int) ([]PatternCount, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT pattern, COUNT(*) as count
		FROM search_logs
		GROUP BY pattern
		ORDER BY count DESC, pattern
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top patterns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var counts []PatternCount
	for rows.Next() {
		var pc PatternCount
		if err := rows.Scan(&pc.Pattern, &pc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan pattern count: %w", err)
		}
		counts = append(counts, pc)
	}
	return counts, rows.Err()
}

// ExportJSON writes all retained entries to path as indented JSON.
func (s *SQLiteStore) ExportJSON(ctx context.Context, path string) (int, error) {
	entries, err := s.All(ctx)
	if err != nil {
		return 0, err
	}
	if entries == nil {
		entries = []*Entry{}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to encode search log: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return 0, fmt.Errorf("failed to write export: %w", err)
	}
	return len(entries), nil
}

// ImportJSON loads entries from a JSON export, oldest first so relative
// recency survives the round trip, then prunes to MaxEntries.
func (s *SQLiteStore) ImportJSON(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read import: %w", err)
	}

	var entries []*Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return 0, fmt.Errorf("failed to decode import: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Exports are newest-first; insert in reverse to keep id order aligned
	// with recency.
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Timestamp.IsZero() {
			e.Timestamp = time.Now().UTC()
		}
		if e.Mode == "" {
			e.Mode = ModeRegex
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO search_logs (pattern, mode, match_count, source, timestamp)
			VALUES (?, ?, ?, ?, ?)
		`, e.Pattern, string(e.Mode), e.MatchCount, e.Source, e.Timestamp)
		if err != nil {
			return 0, fmt.Errorf("failed to import entry: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}

	if err := s.prune(ctx); err != nil {
		return 0, err
	}
	return len(entries), nil
}
