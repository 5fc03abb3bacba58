package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	v1 "github.com/aevon-lab/project-indica/internal/api/v1"
	"github.com/aevon-lab/project-indica/internal/core/storage"
)

// AppendChange persists a change and populates evt.IngestSeq.
// Returns storage.ErrDuplicate if a change with the same id already exists.
func (a *Adapter) AppendChange(ctx context.Context, evt *v1.ChangeEvent) error {
	dataJSON, err := json.Marshal(evt.Document.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal change data: %w", err)
	}

	var domain sql.NullString
	if evt.Document.Domain != "" {
		domain = sql.NullString{String: evt.Document.Domain, Valid: true}
	}

	var ingestSeq int64
	err = a.db.QueryRowContext(ctx, queryAppendChange,
		evt.ID,
		evt.Document.ID,
		evt.Document.DocType,
		domain,
		dataJSON,
		evt.ReceivedAt,
	).Scan(&ingestSeq)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to append change: %w", err)
	}

	evt.IngestSeq = ingestSeq

	slog.Debug("[Postgres] Appended change",
		"change_id", evt.ID,
		"source_id", evt.Document.ID,
		"doc_type", evt.Document.DocType,
		"ingest_seq", ingestSeq)
	return nil
}

// RetrieveChangesAfterCursor fetches changes after a cursor (ingest_seq) in strict total order.
func (a *Adapter) RetrieveChangesAfterCursor(ctx context.Context, cursor int64, limit int) ([]*v1.ChangeEvent, error) {
	rows, err := a.db.QueryContext(ctx, queryRetrieveChangesAfterCursor, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query changes by cursor: %w", err)
	}
	defer rows.Close()

	var changes []*v1.ChangeEvent
	for rows.Next() {
		evt, err := scanChangeRow(rows)
		if err != nil {
			return nil, err
		}
		changes = append(changes, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating changes: %w", err)
	}
	return changes, nil
}

// ReadCheckpoint returns the feed's cursor, or 0 if it has never checkpointed.
func (a *Adapter) ReadCheckpoint(ctx context.Context, feed string) (int64, error) {
	var cursor int64
	err := a.db.QueryRowContext(ctx, queryReadCheckpoint, feed).Scan(&cursor)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read checkpoint %s: %w", feed, err)
	}
	return cursor, nil
}

// WriteCheckpoint advances the feed's cursor. Stale writes are ignored.
func (a *Adapter) WriteCheckpoint(ctx context.Context, feed string, cursor int64) error {
	result, err := a.db.ExecContext(ctx, queryWriteCheckpoint, feed, cursor, a.now().UTC())
	if err != nil {
		return fmt.Errorf("write checkpoint %s: %w", feed, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		slog.Warn("[Postgres] Skipping stale checkpoint write",
			"feed", feed,
			"cursor", cursor)
	}
	return nil
}
