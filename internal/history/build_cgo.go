//go:build cgo && !purego
// +build cgo,!purego

package history

// This file is compiled when building with CGO available.
//
// Build command:
//   CGO_ENABLED=1 go build ./...
//
// The cgo driver wraps the canonical C SQLite implementation:
//   - Fastest query execution
//   - Requires a C compiler on the build host
//
// Driver used: github.com/mattn/go-sqlite3

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite3"

	// BuildMode describes the current build configuration
	BuildMode = "cgo"
)
