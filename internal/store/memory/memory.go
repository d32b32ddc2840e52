// Package memory is the in-process record store used for development and
// as the test double for the remote backends.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/store"
)

type table struct {
	header []string
	rows   [][]string
}

// Store keeps tables in memory with the same positional semantics as the
// spreadsheet backend: header at position 1, data from position 2.
type Store struct {
	mu     sync.Mutex
	tables map[string]*table
}

var _ store.RecordStore = (*Store)(nil)

func New() *Store {
	return &Store{tables: make(map[string]*table)}
}

// ensure returns the table, creating it with its default header first.
func (s *Store) ensure(name string) (*table, error) {
	if t, ok := s.tables[name]; ok {
		return t, nil
	}
	header := store.HeadersFor(name)
	if header == nil {
		return nil, fmt.Errorf("unknown table %q", name)
	}
	t := &table{header: header}
	s.tables[name] = t
	return t, nil
}

func (s *Store) Append(_ context.Context, name string, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.ensure(name)
	if err != nil {
		return err
	}
	if len(values) != len(t.header) {
		return fmt.Errorf("%w: table %s has %d columns, got %d values",
			store.ErrSchemaMismatch, name, len(t.header), len(values))
	}
	row := make([]string, len(values))
	copy(row, values)
	t.rows = append(t.rows, row)
	return nil
}

func (s *Store) LoadAll(_ context.Context, name string, headers []string) ([]store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[name]
	if !ok {
		// Missing tables read as empty, never as an error.
		return []store.Record{}, nil
	}
	out := make([]store.Record, 0, len(t.rows))
	for _, row := range t.rows {
		rec := store.Record{}
		for i, h := range t.header {
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		for _, h := range headers {
			if _, ok := rec[h]; !ok {
				rec[h] = ""
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Store) DeleteAt(_ context.Context, name string, pos int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[name]
	if !ok {
		return fmt.Errorf("%w: table %s is empty", store.ErrPositionOutOfRange, name)
	}
	// Position 1 is the header; data occupies 2..len(rows)+1.
	idx := pos - 2
	if idx < 0 || idx >= len(t.rows) {
		return fmt.Errorf("%w: table %s position %d (rows %d)",
			store.ErrPositionOutOfRange, name, pos, len(t.rows)+1)
	}
	t.rows = append(t.rows[:idx], t.rows[idx+1:]...)
	return nil
}

func (s *Store) Clear(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.ensure(name)
	if err != nil {
		return err
	}
	t.rows = nil
	return nil
}
