// Package history persists the search log: one row per search, capped to
// the newest MaxEntries rows.
//
// Both search modes write through the same Store after a search completes;
// the pattern engine itself has no dependency on this package, the request
// layer forwards the outcome one way.
//
// # Storage backend
//
// SQLite, with a dual-driver build:
//
//   - CGO builds use github.com/mattn/go-sqlite3
//   - CGO-less builds (or -tags purego) use modernc.org/sqlite
//
// The schema is created and upgraded through versioned migrations
// (migrations.go); versions are compared with semver so out-of-order
// migration definitions cannot be applied twice.
//
// # Usage
//
//	store, err := history.NewSQLiteStore("/path/to/deepgrep.db")
//	defer store.Close()
//
//	_ = store.Log(ctx, &history.Entry{
//	    Pattern:    `\d+`,
//	    Mode:       history.ModeRegex,
//	    MatchCount: 3,
//	})
//
//	recent, _ := store.Recent(ctx, 10)
//	top, _ := store.TopPatterns(ctx, 5)
//
// The log can round-trip through JSON with ExportJSON and ImportJSON.
package history
