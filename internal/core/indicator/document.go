package indicator

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is the persisted output of one indicator type for one source document.
type Document struct {
	ID          string                                `json:"id"`
	DocType     string                                `json:"doc_type"`
	SourceID    string                                `json:"source_id"`
	Domains     []string                              `json:"domains"`
	GroupNames  []string                              `json:"group_names"`
	GroupValues []interface{}                         `json:"group_values"`
	Calculators map[string]map[string][]EmittedValue `json:"calculators"`
}

// DecodeDocument decodes a stored document. Numbers in group values keep their
// textual form so that integer keys survive the round trip.
func DecodeDocument(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode indicator document: %w", err)
	}
	return &doc, nil
}

// Values returns the stored values of one emitter and whether the emitter is present.
func (d *Document) Values(calculator, emitter string) ([]EmittedValue, bool) {
	if d == nil {
		return nil, false
	}
	emitters, ok := d.Calculators[calculator]
	if !ok {
		return nil, false
	}
	values, ok := emitters[emitter]
	return values, ok
}

// GroupValue returns the value of a named group-by attribute.
func (d *Document) GroupValue(name string) (interface{}, bool) {
	for i, n := range d.GroupNames {
		if n == name && i < len(d.GroupValues) {
			return d.GroupValues[i], true
		}
	}
	return nil, false
}
