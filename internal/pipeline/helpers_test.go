package pipeline

import (
	"fmt"
	"iter"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	v1 "github.com/aevon-lab/project-indica/internal/api/v1"
	"github.com/aevon-lab/project-indica/internal/core/aggregation"
	"github.com/aevon-lab/project-indica/internal/core/indicator"
)

var testNow = time.Date(2021, 1, 5, 12, 0, 0, 0, time.UTC)

func visitItems(v indicator.View) []interface{} {
	raw, _ := v.Get("visits")
	items, _ := raw.([]interface{})
	return items
}

func visitDates(v indicator.View) iter.Seq[indicator.Raw] {
	return func(yield func(indicator.Raw) bool) {
		for _, item := range visitItems(v) {
			visit, _ := item.(map[string]interface{})
			if !yield(indicator.Emit(visit["date"])) {
				return
			}
		}
	}
}

func visitTotal(v indicator.View) iter.Seq[indicator.Raw] {
	return indicator.Yield(indicator.EmitPair(nil, len(visitItems(v))))
}

// visitsType observes "patient" documents in the "clinical" domain and skips
// archived patients.
func visitsType(t *testing.T) *indicator.Type {
	t.Helper()
	calc, err := indicator.NewCalculator("visits",
		indicator.WithWindow(7*aggregation.Day),
		indicator.WithEmitter("all_visits", indicator.DateEmitter(aggregation.OpCount), visitDates),
		indicator.WithEmitter("total", indicator.NullEmitter(aggregation.OpSum), visitTotal),
	)
	require.NoError(t, err)

	typ, err := indicator.NewType("patient_visits",
		indicator.WithSourceType("patient"),
		indicator.WithDomains("clinical"),
		indicator.WithGroupBy(indicator.GroupByField("clinic")),
		indicator.WithDocumentFilter(indicator.FilterFunc(func(v indicator.View) (bool, error) {
			archived, _ := v.Get("archived")
			return archived != true, nil
		})),
		indicator.WithCalculator(calc),
		indicator.WithClock(func() time.Time { return testNow }),
	)
	require.NoError(t, err)
	return typ
}

func visitsRegistry(t *testing.T) *indicator.Registry {
	t.Helper()
	reg, err := indicator.NewRegistry(visitsType(t))
	require.NoError(t, err)
	return reg
}

var changeSeq int

func visitChange(sourceID, clinic string, dates ...string) *v1.ChangeEvent {
	visits := make([]interface{}, len(dates))
	for i, d := range dates {
		visits[i] = map[string]interface{}{"date": d}
	}
	changeSeq++
	return &v1.ChangeEvent{
		ID: fmt.Sprintf("chg-%d", changeSeq),
		Document: v1.SourceDocument{
			ID:      sourceID,
			DocType: "patient",
			Domain:  "clinical",
			Data: map[string]interface{}{
				"clinic": clinic,
				"visits": visits,
			},
		},
		ReceivedAt: testNow,
	}
}
