package aggregation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestOperators_InitialAndApply(t *testing.T) {
	tests := []struct {
		name        string
		op          string
		incoming    decimal.Decimal
		current     decimal.Decimal
		next        decimal.Decimal
		wantInitial decimal.Decimal
		wantApply   decimal.Decimal
	}{
		{
			name:        "count",
			op:          OpCount,
			incoming:    decimal.NewFromInt(123),
			current:     decimal.NewFromInt(9),
			next:        decimal.NewFromInt(456),
			wantInitial: decimal.NewFromInt(1),
			wantApply:   decimal.NewFromInt(10),
		},
		{
			name:        "sum",
			op:          OpSum,
			incoming:    decimal.NewFromInt(3),
			current:     decimal.NewFromInt(9),
			next:        decimal.NewFromInt(4),
			wantInitial: decimal.NewFromInt(3),
			wantApply:   decimal.NewFromInt(13),
		},
		{
			name:        "min keeps lower",
			op:          OpMin,
			incoming:    decimal.NewFromInt(3),
			current:     decimal.NewFromInt(9),
			next:        decimal.NewFromInt(4),
			wantInitial: decimal.NewFromInt(3),
			wantApply:   decimal.NewFromInt(4),
		},
		{
			name:        "max takes incoming when incoming is higher",
			op:          OpMax,
			incoming:    decimal.NewFromInt(3),
			current:     decimal.NewFromInt(4),
			next:        decimal.NewFromInt(9),
			wantInitial: decimal.NewFromInt(3),
			wantApply:   decimal.NewFromInt(9),
		},
		{
			name:        "sumsqr squares each value",
			op:          OpSumSqr,
			incoming:    decimal.NewFromInt(3),
			current:     decimal.NewFromInt(9),
			next:        decimal.NewFromInt(4),
			wantInitial: decimal.NewFromInt(9),
			wantApply:   decimal.NewFromInt(25),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			agg, ok := Operators[tc.op]
			require.True(t, ok)
			require.True(t, tc.wantInitial.Equal(agg.Initial(tc.incoming)))
			require.True(t, tc.wantApply.Equal(agg.Apply(tc.current, tc.next)))
		})
	}
}

func TestValidOperator(t *testing.T) {
	for _, op := range []string{OpCount, OpSum, OpMin, OpMax, OpSumSqr} {
		require.True(t, ValidOperator(op), op)
	}
	require.False(t, ValidOperator("avg"))
	require.False(t, ValidOperator(""))
}

func TestStats(t *testing.T) {
	s := NewStats(decimal.NewFromInt(2), decimal.NewFromInt(-1), decimal.RequireFromString("1.5"))

	require.Equal(t, int64(3), s.Count())
	require.True(t, decimal.RequireFromString("2.5").Equal(s.Value(OpSum)))
	require.True(t, decimal.NewFromInt(-1).Equal(s.Value(OpMin)))
	require.True(t, decimal.NewFromInt(2).Equal(s.Value(OpMax)))
	require.True(t, decimal.RequireFromString("7.25").Equal(s.Value(OpSumSqr)))

	empty := NewStats()
	require.True(t, empty.Value(OpSum).IsZero())
	require.True(t, empty.Value(OpMin).IsZero())
	require.Equal(t, int64(0), empty.Count())
}
