package indicator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/aevon-lab/project-indica/internal/core/aggregation"
)

// RangeQuery selects the indexed values of one (indicator, group, calculator, emitter).
// Null queries match values without a date. Otherwise Start and End bound the day
// range inclusively; when Descending is set the covered range is [End, Start] and
// ids are returned newest first. A non-descending query with Start after End is empty.
type RangeQuery struct {
	IndicatorType string
	Group         []interface{}
	Calculator    string
	Emitter       string
	Null          bool
	Start         string
	End           string
	Descending    bool
}

// Bounds returns the inclusive day range in ascending order, and false when the
// query cannot match anything.
func (q RangeQuery) Bounds() (lo, hi string, ok bool) {
	if q.Descending {
		return q.End, q.Start, true
	}
	return q.Start, q.End, q.Start <= q.End
}

// Index is the reduce-capable view over every indicator document's emitted values.
type Index interface {
	// Reduce folds the matched values into sum, count, min, max and sumsqr.
	// An empty match yields empty Stats.
	Reduce(ctx context.Context, q RangeQuery) (aggregation.Stats, error)
	// IDs returns the indicator document id of every matched value.
	IDs(ctx context.Context, q RangeQuery) ([]string, error)
}

// EncodeGroupKey returns the canonical index key for group values.
func EncodeGroupKey(group []interface{}) (string, error) {
	if group == nil {
		group = []interface{}{}
	}
	b, err := json.Marshal(group)
	if err != nil {
		return "", fmt.Errorf("encode group key: %w", err)
	}
	return string(b), nil
}

// Result is the outcome of a windowed query, keyed by emitter slug.
// Values is set for reduce queries and IDs otherwise.
type Result struct {
	Values map[string]decimal.Decimal `json:"values,omitempty"`
	IDs    map[string][]string        `json:"ids,omitempty"`
}

func newResult(reduce bool) Result {
	if reduce {
		return Result{Values: map[string]decimal.Decimal{}}
	}
	return Result{IDs: map[string][]string{}}
}
