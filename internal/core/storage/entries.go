package storage

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/aevon-lab/project-indica/internal/core/indicator"
)

// IndexEntry is one emitted value flattened into its index key.
type IndexEntry struct {
	DocID         string
	IndicatorType string
	GroupKey      string
	Calculator    string
	Emitter       string
	Day           string // empty for undated values
	Value         decimal.Decimal
	GroupBy       []byte // JSON, nil when absent
	Seq           int
}

// IndexEntries flattens every emitted value of doc, ordered by calculator,
// emitter and emission order.
func IndexEntries(doc *indicator.Document) ([]IndexEntry, error) {
	groupKey, err := indicator.EncodeGroupKey(doc.GroupValues)
	if err != nil {
		return nil, fmt.Errorf("index entries for %s: %w", doc.ID, err)
	}

	calcs := make([]string, 0, len(doc.Calculators))
	for c := range doc.Calculators {
		calcs = append(calcs, c)
	}
	sort.Strings(calcs)

	var entries []IndexEntry
	for _, calc := range calcs {
		emitters := make([]string, 0, len(doc.Calculators[calc]))
		for e := range doc.Calculators[calc] {
			emitters = append(emitters, e)
		}
		sort.Strings(emitters)

		for _, emitter := range emitters {
			for seq, v := range doc.Calculators[calc][emitter] {
				entry := IndexEntry{
					DocID:         doc.ID,
					IndicatorType: doc.DocType,
					GroupKey:      groupKey,
					Calculator:    calc,
					Emitter:       emitter,
					Value:         v.Value,
					Seq:           seq,
				}
				if v.Date != nil {
					entry.Day = v.Date.String()
				}
				if len(v.GroupBy) > 0 {
					gb, err := json.Marshal(v.GroupBy)
					if err != nil {
						return nil, fmt.Errorf("index entries for %s: group_by: %w", doc.ID, err)
					}
					entry.GroupBy = gb
				}
				entries = append(entries, entry)
			}
		}
	}
	return entries, nil
}
