package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	v1 "github.com/aevon-lab/project-indica/internal/api/v1"
	"github.com/aevon-lab/project-indica/internal/core/aggregation"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanChangeRow scans a source_changes row into a ChangeEvent.
// Compatible with both sql.Row (single) and sql.Rows (multiple).
func scanChangeRow(row scanner) (*v1.ChangeEvent, error) {
	var evt v1.ChangeEvent
	var domain sql.NullString
	var dataJSON []byte

	err := row.Scan(
		&evt.ID,
		&evt.Document.ID,
		&evt.Document.DocType,
		&domain,
		&dataJSON,
		&evt.ReceivedAt,
		&evt.IngestSeq,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan change row: %w", err)
	}
	evt.Document.Domain = domain.String

	if err := json.Unmarshal(dataJSON, &evt.Document.Data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal change data: %w", err)
	}
	return &evt, nil
}

// scanStats scans one reduce row. NUMERIC columns arrive as text.
func scanStats(row scanner) (aggregation.Stats, error) {
	var (
		count          int64
		sum, sumSqr    string
		minVal, maxVal sql.NullString
	)
	if err := row.Scan(&count, &sum, &minVal, &maxVal, &sumSqr); err != nil {
		return nil, fmt.Errorf("scan reduce row: %w", err)
	}
	if count == 0 {
		return aggregation.Stats{}, nil
	}

	stats := aggregation.Stats{aggregation.OpCount: decimal.NewFromInt(count)}
	for op, raw := range map[string]string{
		aggregation.OpSum:    sum,
		aggregation.OpSumSqr: sumSqr,
		aggregation.OpMin:    minVal.String,
		aggregation.OpMax:    maxVal.String,
	} {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", op, raw, err)
		}
		stats[op] = v
	}
	return stats, nil
}

// nullableJSON maps absent JSON to SQL NULL rather than a JSON "null".
func nullableJSON(b []byte) interface{} {
	if b == nil {
		return nil
	}
	return b
}
