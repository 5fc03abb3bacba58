package aggregation

import (
	"github.com/shopspring/decimal"
)

// Supported reduce operators. The reduce-capable index computes all of them for
// every key range; an emitter declares which one it reads back.
const (
	OpSum    = "sum"
	OpCount  = "count"
	OpMin    = "min"
	OpMax    = "max"
	OpSumSqr = "sumsqr"
)

// Stats holds every supported reduction of one set of emitted values, keyed by operator.
// Min and max are absent when the set is empty.
type Stats map[string]decimal.Decimal

// NewStats folds values into a Stats using the Operators registry.
func NewStats(values ...decimal.Decimal) Stats {
	s := Stats{}
	for _, v := range values {
		s = s.Add(v)
	}
	return s
}

// Add folds one value into every operator and returns the updated stats.
func (s Stats) Add(v decimal.Decimal) Stats {
	if s == nil {
		s = Stats{}
	}
	for op, agg := range Operators {
		cur, ok := s[op]
		if !ok {
			s[op] = agg.Initial(v)
			continue
		}
		s[op] = agg.Apply(cur, v)
	}
	return s
}

// Value returns the reduction for op. An empty set reduces to zero for every operator.
func (s Stats) Value(op string) decimal.Decimal {
	v, ok := s[op]
	if !ok {
		return decimal.Zero
	}
	return v
}

// Count returns the number of values folded into s.
func (s Stats) Count() int64 {
	return s.Value(OpCount).IntPart()
}
