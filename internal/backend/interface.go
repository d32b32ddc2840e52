// Package backend selects and constructs the record store for the
// configured persistence backend.
package backend

import (
	"context"

	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/store"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result contains the constructed store and an optional cleanup function.
type Result struct {
	Store   store.RecordStore
	Cleanup CleanupFunc
}

// Factory creates record stores based on configuration.
type Factory interface {
	CreateStore(ctx context.Context, cfg Config) (*Result, error)
}

// Config holds everything needed to construct any of the backends.
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// BackendType identifies the persistence backend.
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
)

// String implements fmt.Stringer.
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is one of the known backends.
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, SheetsBackend:
		return true
	default:
		return false
	}
}
