package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

const (
	OpAppend = "append"
	OpDelete = "delete"
	OpClear  = "clear"
)

// RowEvent tells the mirror worker that one record changed in the local
// store. It carries only the table and the entry's stable ID; the worker
// fetches the full row from the source store before replaying it.
type RowEvent struct {
	Op        string    `json:"op"`
	Table     string    `json:"table"`
	EntryID   string    `json:"entry_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRowEvent creates an event for the given operation.
func NewRowEvent(op, table, entryID string) *RowEvent {
	return &RowEvent{
		Op:        op,
		Table:     table,
		EntryID:   entryID,
		Timestamp: time.Now(),
	}
}

// Validate rejects events that a worker could not act on. A clear event
// covers the whole table and carries no entry ID.
func (e *RowEvent) Validate() error {
	if e.Op != OpAppend && e.Op != OpDelete && e.Op != OpClear {
		return errors.New("unknown row event op: " + e.Op)
	}
	if e.Table == "" {
		return errors.New("row event missing table")
	}
	if e.Op != OpClear && e.EntryID == "" {
		return errors.New("row event missing entry id")
	}
	return nil
}

// ToJSON converts the event to JSON bytes.
func (e *RowEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RowEventFromJSON parses an event from JSON bytes.
func RowEventFromJSON(data []byte) (*RowEvent, error) {
	var e RowEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
