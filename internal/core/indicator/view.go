package indicator

import (
	"strconv"
	"strings"

	v1 "github.com/aevon-lab/project-indica/internal/api/v1"
)

// View is a read-only view of a source document handed to filters, emitters and
// group-by getters. Values returned from it are copies; mutating them never
// reaches the underlying document.
type View struct {
	id      string
	docType string
	domain  string
	data    map[string]interface{}
}

// ViewOf snapshots doc into a View.
func ViewOf(doc v1.SourceDocument) View {
	return NewView(doc.ID, doc.DocType, doc.Domain, doc.Data)
}

// NewView snapshots the given envelope and body into a View.
func NewView(id, docType, domain string, data map[string]interface{}) View {
	cloned, _ := cloneValue(data).(map[string]interface{})
	if cloned == nil {
		cloned = map[string]interface{}{}
	}
	return View{id: id, docType: docType, domain: domain, data: cloned}
}

func (v View) ID() string      { return v.id }
func (v View) DocType() string { return v.docType }
func (v View) Domain() string  { return v.domain }

// Data returns a copy of the document body.
func (v View) Data() map[string]interface{} {
	return cloneValue(v.data).(map[string]interface{})
}

// Get resolves a dotted path ("visit.date", "visits.0.date") against the body.
// The envelope fields "id", "doc_type" and "domain" are returned when the body
// does not define them.
func (v View) Get(path string) (interface{}, bool) {
	if val, ok := LookupPath(v.data, path); ok {
		return cloneValue(val), true
	}
	return v.envelope(path)
}

// Lookup is Get, except a field explicitly set to null reports present with a
// nil value.
func (v View) Lookup(path string) (interface{}, bool) {
	if val, ok := lookupPath(v.data, path); ok {
		return cloneValue(val), true
	}
	return v.envelope(path)
}

func (v View) envelope(path string) (interface{}, bool) {
	switch path {
	case "id", "_id":
		return v.id, v.id != ""
	case "doc_type":
		return v.docType, v.docType != ""
	case "domain":
		return v.domain, v.domain != ""
	}
	return nil, false
}

// LookupPath resolves a dotted path inside a decoded JSON value. Numeric segments
// index into arrays. An empty path returns root itself.
func LookupPath(root interface{}, path string) (interface{}, bool) {
	val, ok := lookupPath(root, path)
	return val, ok && val != nil
}

// lookupPath reports whether path exists, whatever its value.
func lookupPath(root interface{}, path string) (interface{}, bool) {
	if path == "" {
		return root, root != nil
	}
	cur := root
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]interface{}:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []interface{}:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}
