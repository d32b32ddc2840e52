// Package store defines the record store contract shared by the Google
// Sheets, SQLite and in-memory backends: append-only rows keyed by a
// table name, loaded back as header-keyed maps.
package store

import (
	"context"
	"errors"
)

// Record is one stored row as a field-name to value mapping. Fields the
// caller expected but the row lacks are backfilled with "".
type Record map[string]string

// RecordStore is the minimal durable-row contract the ledger depends on.
type RecordStore interface {
	// Append durably adds one row. The table is auto-created with its
	// default header when missing. Fails with ErrStorageUnavailable when
	// the backing service is unreachable and ErrSchemaMismatch when the
	// value count does not match the table header.
	Append(ctx context.Context, table string, values []string) error

	// LoadAll returns every data row in order, backfilling missing
	// expected fields with "". A missing table yields an empty slice,
	// never an error.
	LoadAll(ctx context.Context, table string, headers []string) ([]Record, error)

	// DeleteAt removes exactly one row at the given 1-based position.
	// The header row is position 1, so data rows start at position 2.
	// Fails with ErrPositionOutOfRange past the last row.
	DeleteAt(ctx context.Context, table string, pos int) error

	// Clear removes all data rows but preserves the header row.
	Clear(ctx context.Context, table string) error
}

var (
	// ErrStorageUnavailable: the backing service is unreachable. Surfaced
	// to the user as a warning; the operation is aborted, never retried.
	ErrStorageUnavailable = errors.New("record store unavailable")

	// ErrSchemaMismatch: row width does not match the table header.
	ErrSchemaMismatch = errors.New("row does not match table schema")

	// ErrPositionOutOfRange: position exceeds the table's row count.
	ErrPositionOutOfRange = errors.New("row position out of range")
)
