package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/aevon-lab/project-indica/internal/api/v1"
)

func TestView_GetResolvesPaths(t *testing.T) {
	v := ViewOf(v1.SourceDocument{
		ID:      "p1",
		DocType: "patient",
		Domain:  "clinical",
		Data: map[string]interface{}{
			"name":   "Ada",
			"visits": []interface{}{map[string]interface{}{"date": "2021-01-01"}},
			"meta":   map[string]interface{}{"site": map[string]interface{}{"code": "north"}},
		},
	})

	tests := []struct {
		path string
		want interface{}
		ok   bool
	}{
		{path: "name", want: "Ada", ok: true},
		{path: "meta.site.code", want: "north", ok: true},
		{path: "visits.0.date", want: "2021-01-01", ok: true},
		{path: "visits.1.date", ok: false},
		{path: "visits.x", ok: false},
		{path: "missing", ok: false},
		{path: "id", want: "p1", ok: true},
		{path: "doc_type", want: "patient", ok: true},
		{path: "domain", want: "clinical", ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := v.Get(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestView_LookupKeepsNulls(t *testing.T) {
	v := ViewOf(v1.SourceDocument{
		ID:      "p1",
		DocType: "patient",
		Data: map[string]interface{}{
			"clinic": nil,
			"meta":   map[string]interface{}{"site": nil},
		},
	})

	tests := []struct {
		path    string
		want    interface{}
		ok      bool
		getOK   bool
		getWant interface{}
	}{
		{path: "clinic", ok: true},
		{path: "meta.site", ok: true},
		{path: "meta.site.code", ok: false},
		{path: "missing", ok: false},
		{path: "id", want: "p1", ok: true, getOK: true, getWant: "p1"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := v.Lookup(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)

			got, ok = v.Get(tt.path)
			assert.Equal(t, tt.getOK, ok)
			assert.Equal(t, tt.getWant, got)
		})
	}
}

func TestView_IsolatedFromMutation(t *testing.T) {
	data := map[string]interface{}{
		"visits": []interface{}{map[string]interface{}{"date": "2021-01-01"}},
	}
	v := NewView("p1", "patient", "", data)

	// Mutating the source after snapshotting must not leak in.
	data["visits"].([]interface{})[0].(map[string]interface{})["date"] = "1999-01-01"

	got, ok := v.Get("visits")
	require.True(t, ok)
	visit := got.([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "2021-01-01", visit["date"])

	// Mutating a returned value must not leak back either.
	visit["date"] = "2000-01-01"
	again, _ := v.Get("visits.0.date")
	assert.Equal(t, "2021-01-01", again)

	body := v.Data()
	body["new"] = true
	_, ok = v.Get("new")
	assert.False(t, ok)
}

func TestNewView_NilData(t *testing.T) {
	v := NewView("p1", "patient", "", nil)
	assert.NotNil(t, v.Data())
	_, ok := v.Get("anything")
	assert.False(t, ok)
}
