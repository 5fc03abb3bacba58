package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aevon-lab/project-indica/internal/core/aggregation"
	"github.com/aevon-lab/project-indica/internal/core/indicator"
	"github.com/aevon-lab/project-indica/internal/core/storage"
)

// GetIndicator loads a stored indicator document.
// Returns storage.ErrNotFound if no document has the given id.
func (a *Adapter) GetIndicator(ctx context.Context, id string) (*indicator.Document, error) {
	var raw []byte
	err := a.db.QueryRowContext(ctx, querySelectIndicator, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get indicator %s: %w", id, err)
	}
	return indicator.DecodeDocument(raw)
}

// SaveIndicator replaces the document and its index rows in one transaction.
// Any failure, including cancellation, rolls back and leaves the previous
// document and its index rows in place.
func (a *Adapter) SaveIndicator(ctx context.Context, doc *indicator.Document) error {
	entries, err := storage.IndexEntries(doc)
	if err != nil {
		return err
	}
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("save indicator %s: marshal: %w", doc.ID, err)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save indicator %s: begin tx: %w", doc.ID, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, queryUpsertIndicator,
		doc.ID, doc.DocType, doc.SourceID, docJSON, a.now().UTC(),
	); err != nil {
		return fmt.Errorf("save indicator %s: upsert document: %w", doc.ID, err)
	}

	if _, err := tx.ExecContext(ctx, queryDeleteIndicatorValues, doc.ID); err != nil {
		return fmt.Errorf("save indicator %s: clear index rows: %w", doc.ID, err)
	}

	if len(entries) > 0 {
		insertStmt, err := tx.PrepareContext(ctx, queryInsertIndicatorValue)
		if err != nil {
			return fmt.Errorf("save indicator %s: prepare insert: %w", doc.ID, err)
		}
		defer insertStmt.Close()

		for _, e := range entries {
			day := sql.NullString{String: e.Day, Valid: e.Day != ""}
			if _, err := insertStmt.ExecContext(ctx,
				e.DocID, e.IndicatorType, e.GroupKey, e.Calculator, e.Emitter,
				day, e.Value, nullableJSON(e.GroupBy), e.Seq,
			); err != nil {
				return fmt.Errorf("save indicator %s: insert %s.%s: %w", doc.ID, e.Calculator, e.Emitter, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save indicator %s: commit: %w", doc.ID, err)
	}

	slog.Debug("[Postgres] Saved indicator",
		"id", doc.ID,
		"indicator_type", doc.DocType,
		"index_rows", len(entries))
	return nil
}

// Reduce folds the values matched by q into every reduce operator.
func (a *Adapter) Reduce(ctx context.Context, q indicator.RangeQuery) (aggregation.Stats, error) {
	groupKey, err := indicator.EncodeGroupKey(q.Group)
	if err != nil {
		return nil, err
	}

	var row *sql.Row
	if q.Null {
		row = a.db.QueryRowContext(ctx, queryReduceNull, q.IndicatorType, groupKey, q.Calculator, q.Emitter)
	} else {
		lo, hi, ok := q.Bounds()
		if !ok {
			return aggregation.Stats{}, nil
		}
		row = a.db.QueryRowContext(ctx, queryReduceDated, q.IndicatorType, groupKey, q.Calculator, q.Emitter, lo, hi)
	}

	stats, err := scanStats(row)
	if err != nil {
		return nil, fmt.Errorf("reduce %s.%s.%s: %w", q.IndicatorType, q.Calculator, q.Emitter, err)
	}
	return stats, nil
}

// IDs returns the document id of every value matched by q, in key order.
func (a *Adapter) IDs(ctx context.Context, q indicator.RangeQuery) ([]string, error) {
	groupKey, err := indicator.EncodeGroupKey(q.Group)
	if err != nil {
		return nil, err
	}

	var rows *sql.Rows
	switch {
	case q.Null:
		rows, err = a.db.QueryContext(ctx, queryIDsNull, q.IndicatorType, groupKey, q.Calculator, q.Emitter)
	default:
		lo, hi, ok := q.Bounds()
		if !ok {
			return []string{}, nil
		}
		query := queryIDsDatedAsc
		if q.Descending {
			query = queryIDsDatedDesc
		}
		rows, err = a.db.QueryContext(ctx, query, q.IndicatorType, groupKey, q.Calculator, q.Emitter, lo, hi)
	}
	if err != nil {
		return nil, fmt.Errorf("query ids %s.%s.%s: %w", q.IndicatorType, q.Calculator, q.Emitter, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ids: %w", err)
	}
	return ids, nil
}
