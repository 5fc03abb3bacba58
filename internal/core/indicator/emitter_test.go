package indicator

import (
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aevon-lab/project-indica/internal/core/aggregation"
)

func TestEmitter_ValuesIsLazy(t *testing.T) {
	produced := 0
	endless := func(View) iter.Seq[Raw] {
		return func(yield func(Raw) bool) {
			for {
				produced++
				if !yield(EmitPair(nil, produced)) {
					return
				}
			}
		}
	}
	e := Emitter{Slug: "endless", Def: NullEmitter(aggregation.OpSum), fn: endless}

	var got []EmittedValue
	for ev, err := range e.Values(NewView("x", "t", "", nil)) {
		require.NoError(t, err)
		got = append(got, ev)
		if len(got) == 3 {
			break
		}
	}
	assert.Len(t, got, 3)
	assert.Equal(t, 3, produced)
}

func TestEmitter_ValuesStopsAtFirstInvalid(t *testing.T) {
	e := Emitter{
		Slug: "visits",
		Def:  DateEmitter(aggregation.OpCount),
		fn: func(View) iter.Seq[Raw] {
			return Yield(Emit("2021-01-01"), Emit(nil), Emit("2021-01-03"))
		},
	}

	var valid int
	var firstErr error
	for _, err := range e.Values(NewView("x", "t", "", nil)) {
		if err != nil {
			firstErr = err
			continue
		}
		valid++
	}
	assert.Equal(t, 1, valid)
	require.Error(t, firstErr)

	var emitErr *EmitError
	require.True(t, errors.As(firstErr, &emitErr))
	assert.Equal(t, "visits", emitErr.Emitter)
}

func TestEmitter_NilFuncYieldsNothing(t *testing.T) {
	e := Emitter{Slug: "empty", Def: NullEmitter(aggregation.OpSum)}
	for range e.Values(NewView("x", "t", "", nil)) {
		t.Fatal("expected no values")
	}
}
