package storage

import (
	"context"
	"errors"

	v1 "github.com/aevon-lab/project-indica/internal/api/v1"
	"github.com/aevon-lab/project-indica/internal/core/indicator"
)

var (
	// ErrNotFound is returned when an indicator document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a change with the same id is already in the change log.
	ErrDuplicate = errors.New("change already exists")
)

// IndicatorStore persists indicator documents together with their index entries.
type IndicatorStore interface {
	// GetIndicator returns ErrNotFound when no document has the given id.
	GetIndicator(ctx context.Context, id string) (*indicator.Document, error)

	// SaveIndicator replaces the document and its index entries atomically. A
	// failed or cancelled save leaves the previous document untouched.
	SaveIndicator(ctx context.Context, doc *indicator.Document) error
}

// ReduceIndex is the reduce-capable range index read by windowed queries.
type ReduceIndex = indicator.Index

// Backend is a storage engine serving both the document store and the index.
type Backend interface {
	IndicatorStore
	ReduceIndex
	Ping(ctx context.Context) error
	Close() error
}

// ChangeLog is a durable, totally ordered log of source document changes.
type ChangeLog interface {
	// AppendChange stores evt and populates evt.IngestSeq.
	// Returns ErrDuplicate if a change with the same id was already appended.
	AppendChange(ctx context.Context, evt *v1.ChangeEvent) error

	// RetrieveChangesAfterCursor fetches changes with ingest_seq > cursor in strict order.
	// cursor=0 means "from the beginning".
	RetrieveChangesAfterCursor(ctx context.Context, cursor int64, limit int) ([]*v1.ChangeEvent, error)
}

// CheckpointStore tracks how far each named feed has consumed the change log.
type CheckpointStore interface {
	// ReadCheckpoint returns 0 when the feed has never checkpointed.
	ReadCheckpoint(ctx context.Context, feed string) (int64, error)

	// WriteCheckpoint advances the feed's cursor. Writes never move a cursor backwards.
	WriteCheckpoint(ctx context.Context, feed string, cursor int64) error
}
