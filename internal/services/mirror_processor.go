package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/amqp"
	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/store"
)

// MirrorProcessor replays row events from the local store against the
// remote spreadsheet. It runs in the worker process, never in the
// request path.
type MirrorProcessor struct {
	source store.RecordStore
	target store.RecordStore
}

func NewMirrorProcessor(source, target store.RecordStore) *MirrorProcessor {
	return &MirrorProcessor{source: source, target: target}
}

// HandleEvent applies one event. Replays are idempotent: an append whose
// ID already exists in the target is skipped, and a delete for an absent
// ID is a no-op, so redelivered messages do no harm.
func (m *MirrorProcessor) HandleEvent(ctx context.Context, event *amqp.RowEvent) error {
	switch event.Op {
	case amqp.OpAppend:
		return m.mirrorAppend(ctx, event.Table, event.EntryID)
	case amqp.OpDelete:
		return m.mirrorDelete(ctx, event.Table, event.EntryID)
	case amqp.OpClear:
		return m.mirrorClear(ctx, event.Table)
	default:
		return fmt.Errorf("unknown row event op %q", event.Op)
	}
}

func (m *MirrorProcessor) mirrorClear(ctx context.Context, table string) error {
	if store.HeadersFor(table) == nil {
		return fmt.Errorf("unknown table %q", table)
	}
	if err := m.target.Clear(ctx, table); err != nil {
		return fmt.Errorf("mirror clear %s: %w", table, err)
	}
	slog.InfoContext(ctx, "Mirrored table clear", "table", table)
	return nil
}

func (m *MirrorProcessor) mirrorAppend(ctx context.Context, table, id string) error {
	headers := store.HeadersFor(table)
	if headers == nil {
		return fmt.Errorf("unknown table %q", table)
	}

	existing, err := m.target.LoadAll(ctx, table, headers)
	if err != nil {
		return fmt.Errorf("load target %s: %w", table, err)
	}
	for _, r := range existing {
		if r["id"] == id {
			slog.InfoContext(ctx, "Row already mirrored", "table", table, "entry_id", id)
			return nil
		}
	}

	recs, err := m.source.LoadAll(ctx, table, headers)
	if err != nil {
		return fmt.Errorf("load source %s: %w", table, err)
	}
	for _, r := range recs {
		if r["id"] != id {
			continue
		}
		values := make([]string, len(headers))
		for i, h := range headers {
			values[i] = r[h]
		}
		if err := m.target.Append(ctx, table, values); err != nil {
			return fmt.Errorf("mirror append %s %s: %w", table, id, err)
		}
		slog.InfoContext(ctx, "Mirrored row append", "table", table, "entry_id", id)
		return nil
	}
	// The row was deleted locally before the append event was consumed;
	// the pending delete event will be a no-op too.
	slog.WarnContext(ctx, "Source row gone before mirroring", "table", table, "entry_id", id)
	return nil
}

func (m *MirrorProcessor) mirrorDelete(ctx context.Context, table, id string) error {
	err := deleteByID(ctx, m.target, table, id)
	if err == nil {
		slog.InfoContext(ctx, "Mirrored row delete", "table", table, "entry_id", id)
		return nil
	}
	if errors.Is(err, ErrEntryNotFound) {
		slog.InfoContext(ctx, "Row already absent in mirror", "table", table, "entry_id", id)
		return nil
	}
	return err
}
