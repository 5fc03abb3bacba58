package indicator

import (
	"errors"
	"iter"
	"slices"
)

// Kind selects how an emitter's values are keyed in the index.
type Kind string

const (
	KindDate Kind = "date"
	KindNull Kind = "null"
)

// EmitterDef declares an emitter's kind and the reduce operator applied to it.
type EmitterDef struct {
	Kind   Kind
	Reduce string
}

func DateEmitter(reduce string) EmitterDef { return EmitterDef{Kind: KindDate, Reduce: reduce} }
func NullEmitter(reduce string) EmitterDef { return EmitterDef{Kind: KindNull, Reduce: reduce} }

// EmitFunc produces the raw outputs of one emitter for a source document.
type EmitFunc func(View) iter.Seq[Raw]

// Yield is a convenience EmitFunc body for a fixed list of outputs.
func Yield(raws ...Raw) iter.Seq[Raw] {
	return slices.Values(raws)
}

// Emitter is a named EmitFunc bound to its definition.
type Emitter struct {
	Slug string
	Def  EmitterDef
	fn   EmitFunc
}

// Values lazily normalises the emitter's outputs. Iteration stops at the first
// invalid value.
func (e Emitter) Values(v View) iter.Seq2[EmittedValue, error] {
	return func(yield func(EmittedValue, error) bool) {
		if e.fn == nil {
			return
		}
		for raw := range e.fn(v) {
			ev, err := normalize(e.Def.Kind, raw)
			if err != nil {
				var emitErr *EmitError
				if errors.As(err, &emitErr) {
					emitErr.Emitter = e.Slug
				}
				yield(EmittedValue{}, err)
				return
			}
			if !yield(ev, nil) {
				return
			}
		}
	}
}
