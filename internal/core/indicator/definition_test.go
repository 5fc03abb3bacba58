package indicator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeDefinition writes a single definition YAML file into dir.
func writeDefinition(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

const clinicVisitsYAML = `
name: clinic_visits
source_type: patient
domains: [clinical]
group_by:
  - field: clinic
  - field: year
    type: integer
document_filter:
  - field: archived
    not_equals: true
calculators:
  - slug: visits
    window: 7d
    emitters:
      - slug: all_visits
        kind: date
        reduce: count
        each: visits
        date: date
      - slug: total
        kind: null
        reduce: sum
        count_items: visits
  - slug: paid
    extends: visits
    filters:
      - name: insured
        field: insurance.active
        equals: true
    emitters:
      - slug: amount
        kind: "null"
        reduce: sum
        each: visits
        value: fee
        group_by: [kind]
`

func TestLoadTypes_BuildsWorkingIndicator(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "clinic_visits.yaml", clinicVisitsYAML)
	writeDefinition(t, dir, "notes.txt", "ignored")
	writeDefinition(t, dir, "empty.yml", "# nothing here\n")

	types, err := LoadTypes(dir, WithClock(fixedClock))
	require.NoError(t, err)
	require.Len(t, types, 1)
	typ := types[0]

	assert.Equal(t, "clinic_visits", typ.Name())
	assert.Equal(t, "patient", typ.SourceType())
	assert.Equal(t, []string{"clinic", "year"}, typ.GroupNames())
	assert.Equal(t, GroupTypeInteger, typ.GroupTypeMap()["year"])

	paid, err := typ.Calculator("paid")
	require.NoError(t, err)
	var slugs []string
	for _, e := range paid.Emitters() {
		slugs = append(slugs, e.Slug)
	}
	assert.Equal(t, []string{"all_visits", "amount", "total"}, slugs)

	v := NewView("p1", "patient", "", map[string]interface{}{
		"clinic":    "north",
		"year":      float64(2021),
		"insurance": map[string]interface{}{"active": true},
		"visits": []interface{}{
			map[string]interface{}{"date": "2021-01-01", "fee": 12.5, "kind": "checkup"},
			map[string]interface{}{"date": "2021-01-02", "fee": float64(30), "kind": "xray"},
		},
	})
	ok, err := typ.PassesDocumentFilter(v)
	require.NoError(t, err)
	require.True(t, ok)

	doc, err := typ.Calculate(v)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"north", float64(2021)}, doc.GroupValues)

	visits, _ := doc.Values("visits", "all_visits")
	assert.Len(t, visits, 2)
	total, _ := doc.Values("visits", "total")
	require.Len(t, total, 1)
	assert.True(t, dec("2").Equal(total[0].Value))

	amounts, _ := doc.Values("paid", "amount")
	require.Len(t, amounts, 2)
	assert.True(t, dec("12.5").Equal(amounts[0].Value))
	assert.Equal(t, []interface{}{"checkup"}, amounts[0].GroupBy)

	idx := &memIndex{}
	idx.index(t, doc)
	res, err := typ.QueryWindow(context.Background(), idx, "paid", []interface{}{"north", float64(2021)}, true)
	require.NoError(t, err)
	assert.True(t, dec("42.5").Equal(res.Values["amount"]))
	assert.True(t, dec("2").Equal(res.Values["all_visits"]))

	archived := NewView("p2", "patient", "", map[string]interface{}{"archived": true})
	ok, err = typ.PassesDocumentFilter(archived)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadDefinitions_Fingerprint(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "a.yaml", clinicVisitsYAML)

	first, err := LoadDefinitions(dir)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Len(t, first[0].Fingerprint, 64)
	assert.Equal(t, filepath.Join(dir, "a.yaml"), first[0].Path)

	again, err := LoadDefinitions(dir)
	require.NoError(t, err)
	assert.Equal(t, first[0].Fingerprint, again[0].Fingerprint)
}

func TestLoadDefinitions_MissingDirIsEmpty(t *testing.T) {
	defs, err := LoadDefinitions(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func TestLoadDefinitions_Errors(t *testing.T) {
	t.Run("duplicate names", func(t *testing.T) {
		dir := t.TempDir()
		writeDefinition(t, dir, "a.yaml", clinicVisitsYAML)
		writeDefinition(t, dir, "b.yaml", clinicVisitsYAML)
		_, err := LoadDefinitions(dir)
		require.ErrorIs(t, err, ErrInvalidDefinition)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		dir := t.TempDir()
		writeDefinition(t, dir, "a.yaml", "name: [unterminated")
		_, err := LoadDefinitions(dir)
		require.Error(t, err)
	})

	t.Run("path is a file", func(t *testing.T) {
		dir := t.TempDir()
		writeDefinition(t, dir, "a.yaml", clinicVisitsYAML)
		_, err := LoadDefinitions(filepath.Join(dir, "a.yaml"))
		require.Error(t, err)
	})
}

func TestDefinition_BuildErrors(t *testing.T) {
	exists := true
	tests := []struct {
		name    string
		def     Definition
		wantErr error
	}{
		{
			name:    "missing source type",
			def:     Definition{Name: "x"},
			wantErr: ErrInvalidDefinition,
		},
		{
			name: "date emitter without window",
			def: Definition{Name: "x", SourceType: "s", Calculators: []CalculatorDefinition{{
				Slug:     "c",
				Emitters: []EmitterDefinition{{Slug: "e", Kind: "date", Each: "items", Date: "d"}},
			}}},
			wantErr: ErrInvalidWindowConfiguration,
		},
		{
			name: "bad window",
			def: Definition{Name: "x", SourceType: "s", Calculators: []CalculatorDefinition{{
				Slug: "c", Window: "a week",
			}}},
			wantErr: ErrInvalidWindowConfiguration,
		},
		{
			name: "unknown kind",
			def: Definition{Name: "x", SourceType: "s", Calculators: []CalculatorDefinition{{
				Slug:     "c",
				Emitters: []EmitterDefinition{{Slug: "e", Kind: "weekly"}},
			}}},
			wantErr: ErrEmitterType,
		},
		{
			name: "unknown parent",
			def: Definition{Name: "x", SourceType: "s", Calculators: []CalculatorDefinition{{
				Slug: "c", Extends: "ghost",
			}}},
			wantErr: ErrInvalidDefinition,
		},
		{
			name: "predicate with two conditions",
			def: Definition{Name: "x", SourceType: "s", DocumentFilter: []PredicateDefinition{{
				Field: "a", Equals: 1, Exists: &exists,
			}}},
			wantErr: ErrInvalidDefinition,
		},
		{
			name: "invalid group type",
			def: Definition{Name: "x", SourceType: "s", GroupBy: []GroupByDefinition{{
				Field: "a", Type: "float",
			}}},
			wantErr: ErrInvalidGroupByType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.def.Build()
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPredicateDefinition(t *testing.T) {
	yes, no := true, false
	v := NewView("p1", "patient", "", map[string]interface{}{
		"status": "active",
		"age":    float64(42),
		"flag":   false,
	})

	tests := []struct {
		name string
		pd   PredicateDefinition
		want bool
	}{
		{name: "equals string", pd: PredicateDefinition{Field: "status", Equals: "active"}, want: true},
		{name: "equals number across types", pd: PredicateDefinition{Field: "age", Equals: 42}, want: true},
		{name: "equals bool", pd: PredicateDefinition{Field: "flag", Equals: false}, want: true},
		{name: "equals missing", pd: PredicateDefinition{Field: "nope", Equals: "x"}, want: false},
		{name: "not equals", pd: PredicateDefinition{Field: "status", NotEquals: "closed"}, want: true},
		{name: "not equals missing", pd: PredicateDefinition{Field: "nope", NotEquals: "x"}, want: true},
		{name: "exists", pd: PredicateDefinition{Field: "status", Exists: &yes}, want: true},
		{name: "not exists", pd: PredicateDefinition{Field: "nope", Exists: &no}, want: true},
		{name: "in", pd: PredicateDefinition{Field: "status", In: []interface{}{"pending", "active"}}, want: true},
		{name: "not in", pd: PredicateDefinition{Field: "status", In: []interface{}{"pending"}}, want: false},
		{name: "string does not equal number", pd: PredicateDefinition{Field: "age", Equals: "42"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := tt.pd.compile()
			require.NoError(t, err)
			got, err := fn(v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEmitterDefinition_MissingFieldsAreInvalid(t *testing.T) {
	def := Definition{Name: "x", SourceType: "s", Calculators: []CalculatorDefinition{{
		Slug: "c",
		Emitters: []EmitterDefinition{{
			Slug: "fees", Kind: "null", Reduce: "sum", Each: "items", Value: "fee",
		}},
	}}}
	typ, err := def.Build()
	require.NoError(t, err)

	_, err = typ.Calculate(NewView("1", "s", "", map[string]interface{}{
		"items": []interface{}{map[string]interface{}{"price": 1}},
	}))
	require.ErrorIs(t, err, ErrInvalidEmittedValue)

	doc, err := typ.Calculate(NewView("2", "s", "", map[string]interface{}{}))
	require.NoError(t, err)
	fees, _ := doc.Values("c", "fees")
	assert.Empty(t, fees)
}
