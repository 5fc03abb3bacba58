package indicator

import (
	"context"
	"iter"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/aevon-lab/project-indica/internal/core/aggregation"
)

var fixedNow = time.Date(2021, 1, 5, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// memEntry is one indexed emitted value.
type memEntry struct {
	typ, group, calc, emitter, day, docID string
	value                                 decimal.Decimal
}

// memIndex is an in-memory Index used to exercise windowed queries.
type memIndex struct {
	mu      sync.Mutex
	entries []memEntry
	queries []RangeQuery
}

func (m *memIndex) index(t *testing.T, doc *Document) {
	t.Helper()
	group, err := EncodeGroupKey(doc.GroupValues)
	require.NoError(t, err)
	for calc, emitters := range doc.Calculators {
		for emitter, values := range emitters {
			for _, v := range values {
				day := ""
				if v.Date != nil {
					day = v.Date.String()
				}
				m.entries = append(m.entries, memEntry{
					typ: doc.DocType, group: group, calc: calc, emitter: emitter,
					day: day, docID: doc.ID, value: v.Value,
				})
			}
		}
	}
}

func (m *memIndex) match(q RangeQuery) ([]memEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q)

	group, err := EncodeGroupKey(q.Group)
	if err != nil {
		return nil, err
	}
	lo, hi, ok := q.Bounds()
	var out []memEntry
	for _, e := range m.entries {
		if e.typ != q.IndicatorType || e.group != group || e.calc != q.Calculator || e.emitter != q.Emitter {
			continue
		}
		if q.Null {
			if e.day != "" {
				continue
			}
		} else if !ok || e.day == "" || e.day < lo || e.day > hi {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].day != out[j].day {
			return (out[i].day < out[j].day) != q.Descending
		}
		return out[i].docID < out[j].docID
	})
	return out, nil
}

func (m *memIndex) Reduce(_ context.Context, q RangeQuery) (aggregation.Stats, error) {
	entries, err := m.match(q)
	if err != nil {
		return nil, err
	}
	stats := aggregation.Stats{}
	for _, e := range entries {
		stats = stats.Add(e.value)
	}
	return stats, nil
}

func (m *memIndex) IDs(_ context.Context, q RangeQuery) ([]string, error) {
	entries, err := m.match(q)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.docID
	}
	return ids, nil
}

func visitList(v View) []interface{} {
	visits, _ := v.Get("visits")
	list, _ := visits.([]interface{})
	return list
}

func allVisits(v View) iter.Seq[Raw] {
	return func(yield func(Raw) bool) {
		for _, item := range visitList(v) {
			visit, _ := item.(map[string]interface{})
			if !yield(Emit(visit["date"])) {
				return
			}
		}
	}
}

func totalVisits(v View) iter.Seq[Raw] {
	return Yield(EmitPair(nil, len(visitList(v))))
}

func visitsCalculator(t *testing.T, opts ...CalculatorOption) *Calculator {
	t.Helper()
	base := []CalculatorOption{
		WithWindow(7 * aggregation.Day),
		WithEmitter("all_visits", DateEmitter(aggregation.OpCount), allVisits),
		WithEmitter("total", NullEmitter(aggregation.OpSum), totalVisits),
	}
	c, err := NewCalculator("visits", append(base, opts...)...)
	require.NoError(t, err)
	return c
}

func visitsType(t *testing.T, opts ...TypeOption) *Type {
	t.Helper()
	base := []TypeOption{
		WithSourceType("patient"),
		WithDomains("clinical"),
		WithGroupBy(GroupByField("clinic")),
		WithCalculator(visitsCalculator(t)),
		WithClock(fixedClock),
	}
	typ, err := NewType("patient_visits", append(base, opts...)...)
	require.NoError(t, err)
	return typ
}

func patient(id, clinic string, dates ...string) View {
	visits := make([]interface{}, len(dates))
	for i, d := range dates {
		visits[i] = map[string]interface{}{"date": d}
	}
	return NewView(id, "patient", "", map[string]interface{}{
		"clinic": clinic,
		"visits": visits,
	})
}

func date(t *testing.T, s string) *Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return &d
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
