package indicator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff_NoPreviousDocument(t *testing.T) {
	typ := visitsType(t)
	doc, err := typ.Calculate(patient("p1", "north", "2021-01-01", "2021-01-02"))
	require.NoError(t, err)

	report := typ.Diff(doc, nil)
	require.NotNil(t, report)
	require.Len(t, report.IndicatorChanges, 2)

	byEmitter := map[string]IndicatorChange{}
	for _, c := range report.IndicatorChanges {
		byEmitter[c.Emitter] = c
	}
	assert.Len(t, byEmitter["all_visits"].Values, 2)
	assert.Len(t, byEmitter["total"].Values, 1)
	assert.Equal(t, KindDate, byEmitter["all_visits"].EmitterType)
	assert.Equal(t, "count", byEmitter["all_visits"].ReduceType)
	assert.Equal(t, KindNull, byEmitter["total"].EmitterType)

	assert.Equal(t, "patient_visits", report.DocType)
	assert.Equal(t, DefaultDatabase, report.Database)
	assert.Equal(t, []string{"clinical"}, report.Domains)
	assert.Equal(t, []string{"clinic"}, report.GroupNames)
	assert.Equal(t, []interface{}{"north"}, report.GroupValues)
	assert.Equal(t, map[string]GroupType{"clinic": GroupTypeString}, report.GroupTypeMap)
	assert.Len(t, report.AllIndicators, 2)
}

func TestDiff_NoPreviousDocumentSkipsEmptyEmitters(t *testing.T) {
	typ := visitsType(t)
	doc, err := typ.Calculate(patient("p1", "north"))
	require.NoError(t, err)

	report := typ.Diff(doc, nil)
	require.NotNil(t, report, "total is 0 but still a value")
	require.Len(t, report.IndicatorChanges, 1)
	assert.Equal(t, "total", report.IndicatorChanges[0].Emitter)
	assert.Len(t, report.AllIndicators, 1)
}

func TestDiff_IdenticalIsAbsent(t *testing.T) {
	typ := visitsType(t)
	a, err := typ.Calculate(patient("p1", "north", "2021-01-01"))
	require.NoError(t, err)
	b, err := typ.Calculate(patient("p1", "north", "2021-01-01"))
	require.NoError(t, err)

	assert.Nil(t, typ.Diff(a, a))
	assert.Nil(t, typ.Diff(b, a))
}

func TestDiff_IdenticalAfterStorageRoundTrip(t *testing.T) {
	typ := visitsType(t)
	doc, err := typ.Calculate(patient("p1", "north", "2021-01-01", "2021-01-02"))
	require.NoError(t, err)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	stored, err := DecodeDocument(raw)
	require.NoError(t, err)

	assert.Nil(t, typ.Diff(doc, stored))
}

func TestDiff_ShrinkingEmitterReportsNoValues(t *testing.T) {
	typ := visitsType(t)
	before, err := typ.Calculate(patient("p1", "north", "2021-01-01", "2021-01-02"))
	require.NoError(t, err)
	after, err := typ.Calculate(patient("p1", "north", "2021-01-01"))
	require.NoError(t, err)

	report := typ.Diff(after, before)
	require.NotNil(t, report)

	byEmitter := map[string]IndicatorChange{}
	for _, c := range report.IndicatorChanges {
		byEmitter[c.Emitter] = c
	}
	require.Contains(t, byEmitter, "all_visits")
	assert.NotNil(t, byEmitter["all_visits"].Values)
	assert.Empty(t, byEmitter["all_visits"].Values)

	require.Contains(t, byEmitter, "total")
	require.Len(t, byEmitter["total"].Values, 1)
	assert.True(t, dec("1").Equal(byEmitter["total"].Values[0].Value))

	assert.Len(t, report.AllIndicators, 2)
}

func TestDiff_ReportsOnlyAddedValues(t *testing.T) {
	typ := visitsType(t)
	before, err := typ.Calculate(patient("p1", "north", "2021-01-01", "2021-01-02"))
	require.NoError(t, err)
	after, err := typ.Calculate(patient("p1", "north", "2021-01-02", "2021-01-03", "2021-01-03"))
	require.NoError(t, err)

	report := typ.Diff(after, before)
	require.NotNil(t, report)

	for _, change := range report.IndicatorChanges {
		newVals, _ := after.Values(change.Calculator, change.Emitter)
		oldVals, _ := before.Values(change.Calculator, change.Emitter)
		for _, v := range change.Values {
			assert.True(t, containsValue(newVals, v), "%v must come from the new document", v)
			assert.False(t, containsValue(oldVals, v), "%v must be absent from the old document", v)
		}
		if change.Emitter == "all_visits" {
			require.Len(t, change.Values, 1, "duplicates collapse")
			assert.Equal(t, "2021-01-03", change.Values[0].Date.String())
		}
	}
}

func TestDiff_IgnoresUndeclaredEmitters(t *testing.T) {
	typ := visitsType(t)
	doc, err := typ.Calculate(patient("p1", "north", "2021-01-01"))
	require.NoError(t, err)

	old, err := typ.Calculate(patient("p1", "north", "2021-01-01"))
	require.NoError(t, err)
	old.Calculators["visits"]["retired"] = []EmittedValue{{Value: dec("9")}}
	old.Calculators["legacy"] = map[string][]EmittedValue{"x": {{Value: dec("1")}}}

	assert.Nil(t, typ.Diff(doc, old))
}

func TestDiff_MissingEmitterInOldDocumentCountsAsChanged(t *testing.T) {
	typ := visitsType(t)
	doc, err := typ.Calculate(patient("p1", "north"))
	require.NoError(t, err)

	old, err := typ.Calculate(patient("p1", "north"))
	require.NoError(t, err)
	delete(old.Calculators["visits"], "all_visits")

	report := typ.Diff(doc, old)
	require.NotNil(t, report)
	require.Len(t, report.IndicatorChanges, 1)
	assert.Equal(t, "all_visits", report.IndicatorChanges[0].Emitter)
	assert.Empty(t, report.IndicatorChanges[0].Values)
}

func TestReport_JSON(t *testing.T) {
	typ := visitsType(t)
	doc, err := typ.Calculate(patient("p1", "north", "2021-01-01"))
	require.NoError(t, err)

	raw, err := json.Marshal(typ.Diff(doc, nil))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, key := range []string{"domains", "database", "doc_type", "group_names", "group_values", "group_type_map", "indicator_changes", "all_indicators"} {
		assert.Contains(t, decoded, key)
	}

	changes := decoded["indicator_changes"].([]interface{})
	first := changes[0].(map[string]interface{})
	for _, key := range []string{"calculator", "emitter", "emitter_type", "reduce_type", "values"} {
		assert.Contains(t, first, key)
	}
}

func containsValue(values []EmittedValue, v EmittedValue) bool {
	for _, candidate := range values {
		if candidate.Equal(v) {
			return true
		}
	}
	return false
}
