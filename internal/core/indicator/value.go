package indicator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aevon-lab/project-indica/internal/core/aggregation"
)

// EmittedValue is one normalised output of an emitter.
type EmittedValue struct {
	Date    *Date
	Value   decimal.Decimal
	GroupBy []interface{}
}

type emittedValueWire struct {
	Date    *Date           `json:"date"`
	Value   json.RawMessage `json:"value"`
	GroupBy []interface{}   `json:"group_by"`
}

func (v EmittedValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(emittedValueWire{
		Date:    v.Date,
		Value:   json.RawMessage(v.Value.String()),
		GroupBy: v.GroupBy,
	})
}

// UnmarshalJSON accepts the object form and the legacy [date, value] pair.
func (v *EmittedValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		var pair []json.RawMessage
		if err := dec.Decode(&pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("emitted value pair must have 2 elements, got %d", len(pair))
		}
		var out EmittedValue
		if err := json.Unmarshal(pair[0], &out.Date); err != nil {
			return fmt.Errorf("emitted value date: %w", err)
		}
		if err := json.Unmarshal(pair[1], &out.Value); err != nil {
			return fmt.Errorf("emitted value value: %w", err)
		}
		*v = out
		return nil
	}

	var wire struct {
		Date    *Date           `json:"date"`
		Value   decimal.Decimal `json:"value"`
		GroupBy []interface{}   `json:"group_by"`
	}
	if err := dec.Decode(&wire); err != nil {
		return err
	}
	*v = EmittedValue{Date: wire.Date, Value: wire.Value, GroupBy: wire.GroupBy}
	return nil
}

// valueKey is the identity of an emitted value inside diff sets.
type valueKey struct {
	date    string
	value   string
	groupBy string
}

func (v EmittedValue) key() valueKey {
	k := valueKey{value: v.Value.String()}
	if v.Date != nil {
		k.date = v.Date.String()
	}
	if len(v.GroupBy) > 0 {
		k.groupBy = canonicalJSON(v.GroupBy)
	}
	return k
}

// Equal reports whether v and o are the same value for diffing purposes.
func (v EmittedValue) Equal(o EmittedValue) bool {
	return v.key() == o.key()
}

func canonicalJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

type rawShape int

const (
	rawBare rawShape = iota
	rawPair
	rawFull
	rawInvalid
)

// Raw is an un-normalised emitter output. Build one with Emit, EmitPair or EmitValue.
type Raw struct {
	shape   rawShape
	at      interface{}
	value   interface{}
	groupBy interface{}
	reason  string
}

// Value is the fully specified emitter output accepted by EmitValue.
// A nil Value counts as 1.
type Value struct {
	Date    interface{}
	Value   interface{}
	GroupBy interface{}
}

// Emit yields a bare date (or nil) counted as 1.
func Emit(at interface{}) Raw {
	return Raw{shape: rawBare, at: at}
}

// EmitPair yields a date and a numeric value.
func EmitPair(at, value interface{}) Raw {
	return Raw{shape: rawPair, at: at, value: value}
}

// EmitValue yields a date, an optional value and an optional group_by tuple.
func EmitValue(v Value) Raw {
	return Raw{shape: rawFull, at: v.Date, value: v.Value, groupBy: v.GroupBy}
}

// EmitInvalid yields an output that always fails normalisation with reason.
func EmitInvalid(reason string) Raw {
	return Raw{shape: rawInvalid, reason: reason}
}

func normalize(kind Kind, raw Raw) (EmittedValue, error) {
	out := EmittedValue{Value: decimal.NewFromInt(1)}

	switch raw.shape {
	case rawInvalid:
		return EmittedValue{}, &EmitError{Reason: raw.reason}
	case rawPair:
		if raw.value == nil {
			return EmittedValue{}, &EmitError{Reason: "pair value is missing"}
		}
		fallthrough
	case rawFull:
		if raw.value != nil {
			d, err := aggregation.ToDecimal(raw.value)
			if err != nil {
				return EmittedValue{}, &EmitError{Reason: fmt.Sprintf("value: %v", err)}
			}
			out.Value = d
		}
		gb, err := normalizeGroupBy(raw.groupBy)
		if err != nil {
			return EmittedValue{}, err
		}
		out.GroupBy = gb
	}

	date, err := resolveDate(raw.at)
	if err != nil {
		return EmittedValue{}, err
	}
	switch kind {
	case KindDate:
		if date == nil {
			return EmittedValue{}, &EmitError{Reason: "date emitter produced a value without a date"}
		}
	case KindNull:
		if date != nil {
			return EmittedValue{}, &EmitError{Reason: fmt.Sprintf("null emitter produced dated value %s", date)}
		}
	default:
		return EmittedValue{}, &EmitError{Reason: fmt.Sprintf("unknown emitter kind %q", kind)}
	}
	out.Date = date
	return out, nil
}

func normalizeGroupBy(gb interface{}) ([]interface{}, error) {
	if gb == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(gb)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []interface{}{gb}, nil
	}
	if rv.Len() == 0 {
		return nil, &EmitError{Reason: "group_by must not be empty"}
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

func resolveDate(at interface{}) (*Date, error) {
	var d Date
	switch v := at.(type) {
	case nil:
		return nil, nil
	case Date:
		d = v
	case *Date:
		if v == nil {
			return nil, nil
		}
		d = *v
	case time.Time:
		d = DateOf(v)
	case *time.Time:
		if v == nil {
			return nil, nil
		}
		d = DateOf(*v)
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return nil, &EmitError{Reason: err.Error()}
		}
		d = parsed
	default:
		return nil, &EmitError{Reason: fmt.Sprintf("unsupported date type %T", at)}
	}
	if !d.IsValid() {
		return nil, &EmitError{Reason: fmt.Sprintf("invalid date %s", d)}
	}
	return &d, nil
}
