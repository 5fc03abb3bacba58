package projection

import (
	"iter"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aevon-lab/project-indica/internal/core/aggregation"
	"github.com/aevon-lab/project-indica/internal/core/indicator"
)

var testNow = time.Date(2021, 1, 5, 12, 0, 0, 0, time.UTC)

func noValues(indicator.View) iter.Seq[indicator.Raw] {
	return indicator.Yield()
}

// visitsRegistry holds "clinic_visits" grouped by (clinic, year) where year is
// an integer attribute.
func visitsRegistry(t *testing.T) *indicator.Registry {
	t.Helper()
	calc, err := indicator.NewCalculator("visits",
		indicator.WithWindow(7*aggregation.Day),
		indicator.WithEmitter("all_visits", indicator.DateEmitter(aggregation.OpCount), noValues),
		indicator.WithEmitter("total", indicator.NullEmitter(aggregation.OpSum), noValues),
	)
	require.NoError(t, err)

	typ, err := indicator.NewType("clinic_visits",
		indicator.WithSourceType("patient"),
		indicator.WithGroupBy(indicator.GroupByField("clinic"), indicator.GroupByField("year")),
		indicator.WithGroupByType("year", indicator.GroupTypeInteger),
		indicator.WithCalculator(calc),
		indicator.WithClock(func() time.Time { return testNow }),
	)
	require.NoError(t, err)

	reg, err := indicator.NewRegistry(typ)
	require.NoError(t, err)
	return reg
}

func isNull(q indicator.RangeQuery) bool { return q.Null }

func isDated(q indicator.RangeQuery) bool { return !q.Null }
