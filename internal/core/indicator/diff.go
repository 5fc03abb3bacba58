package indicator

import "slices"

// IndicatorMeta identifies one emitter of an indicator.
type IndicatorMeta struct {
	Calculator  string `json:"calculator"`
	Emitter     string `json:"emitter"`
	EmitterType Kind   `json:"emitter_type"`
	ReduceType  string `json:"reduce_type"`
}

// IndicatorChange carries the values an emitter gained since the previous document.
type IndicatorChange struct {
	IndicatorMeta
	Values []EmittedValue `json:"values"`
}

// Report is the change notification emitted after an indicator document is saved.
type Report struct {
	Domains          []string             `json:"domains"`
	Database         string               `json:"database"`
	DocType          string               `json:"doc_type"`
	GroupNames       []string             `json:"group_names"`
	GroupValues      []interface{}        `json:"group_values"`
	GroupTypeMap     map[string]GroupType `json:"group_type_map"`
	IndicatorChanges []IndicatorChange    `json:"indicator_changes"`
	AllIndicators    []IndicatorMeta      `json:"all_indicators"`
}

// Diff compares a freshly calculated document with the previously stored one
// (nil when there was none). It returns nil when no declared emitter changed.
// Changed emitters report only values absent from the old document; values that
// disappeared are not reported.
func (t *Type) Diff(newDoc, oldDoc *Document) *Report {
	var changes []IndicatorChange
	for _, c := range t.calculators {
		for _, e := range c.emitters {
			newVals, newOK := newDoc.Values(c.slug, e.Slug)
			if oldDoc == nil {
				if len(newVals) == 0 {
					continue
				}
				changes = append(changes, IndicatorChange{
					IndicatorMeta: metaOf(c, e),
					Values:        slices.Clone(newVals),
				})
				continue
			}
			oldVals, oldOK := oldDoc.Values(c.slug, e.Slug)
			if newOK == oldOK && sameValues(newVals, oldVals) {
				continue
			}
			changes = append(changes, IndicatorChange{
				IndicatorMeta: metaOf(c, e),
				Values:        addedValues(newVals, oldVals),
			})
		}
	}
	if len(changes) == 0 {
		return nil
	}

	report := &Report{
		Domains:          t.Domains(),
		Database:         t.database,
		DocType:          t.name,
		GroupNames:       t.GroupNames(),
		GroupValues:      slices.Clone(newDoc.GroupValues),
		GroupTypeMap:     t.GroupTypeMap(),
		IndicatorChanges: changes,
		AllIndicators:    []IndicatorMeta{},
	}
	if report.Domains == nil {
		report.Domains = []string{}
	}
	for _, c := range t.calculators {
		for _, e := range c.emitters {
			if vals, _ := newDoc.Values(c.slug, e.Slug); len(vals) > 0 {
				report.AllIndicators = append(report.AllIndicators, metaOf(c, e))
			}
		}
	}
	return report
}

func metaOf(c *Calculator, e Emitter) IndicatorMeta {
	return IndicatorMeta{
		Calculator:  c.slug,
		Emitter:     e.Slug,
		EmitterType: e.Def.Kind,
		ReduceType:  e.Def.Reduce,
	}
}

func sameValues(a, b []EmittedValue) bool {
	return slices.EqualFunc(a, b, EmittedValue.Equal)
}

// addedValues returns the distinct values of newVals that are not in oldVals,
// in first-seen order.
func addedValues(newVals, oldVals []EmittedValue) []EmittedValue {
	old := make(map[valueKey]struct{}, len(oldVals))
	for _, v := range oldVals {
		old[v.key()] = struct{}{}
	}
	out := []EmittedValue{}
	for _, v := range newVals {
		k := v.key()
		if _, seen := old[k]; seen {
			continue
		}
		old[k] = struct{}{}
		out = append(out, v)
	}
	return out
}
