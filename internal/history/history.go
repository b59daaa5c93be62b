package history

import (
	"context"
	"time"
)

// MaxEntries caps the log size. Logging past the cap prunes the oldest
// rows so the store never grows without bound.
const MaxEntries = 200

// Mode identifies which search mode produced an entry.
type Mode string

const (
	ModeRegex    Mode = "regex"
	ModeSemantic Mode = "semantic"
)

// Entry is one logged search.
type Entry struct {
	ID         int64     `json:"-"`
	Pattern    string    `json:"pattern"`
	Mode       Mode      `json:"mode"`
	MatchCount int       `json:"match_count"`
	Source     string    `json:"source,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// PatternCount pairs a pattern with how often it was searched.
type PatternCount struct {
	Pattern string `json:"pattern"`
	Count   int    `json:"count"`
}

// Store defines the interface for persisting and querying the search log.
// It is strictly append-only from the searchers' point of view; pruning is
// internal bookkeeping.
type Store interface {
	// Log appends an entry and prunes the log to MaxEntries rows.
	// A zero Timestamp is filled with the current time.
	Log(ctx context.Context, entry *Entry) error

	// Recent returns the newest entries, newest first.
	Recent(ctx context.Context, limit int) ([]*Entry, error)

	// TopPatterns returns the most frequently searched patterns.
	TopPatterns(ctx context.Context, limit int) ([]PatternCount, error)

	// All returns every retained entry, newest first.
	All(ctx context.Context) ([]*Entry, error)

	// ExportJSON writes all retained entries to path as indented JSON and
	// returns how many were written.
	ExportJSON(ctx context.Context, path string) (int, error)

	// ImportJSON loads entries from a JSON export at path, filling missing
	// timestamps with the current time, and returns how many were read.
	// The log is pruned to MaxEntries afterwards.
	ImportJSON(ctx context.Context, path string) (int, error)

	// Close releases the underlying database.
	Close() error
}
