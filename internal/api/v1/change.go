package v1

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidChange is returned by Validate for an unusable change envelope.
var ErrInvalidChange = errors.New("invalid change")

// SourceDocument is an arbitrary document observed on the change feed.
// Indicator types compute their aggregates from it; it is never modified by them.
type SourceDocument struct {
	// ID is the stable identity of the source document. Indicator document ids are
	// derived from it, so repeated changes to the same document update the same indicators.
	ID string `json:"id"`

	// DocType selects which indicator types observe the document (e.g. "Visit").
	DocType string `json:"doc_type"`

	// Domain is the tenant/project the document belongs to.
	Domain string `json:"domain,omitempty"`

	// Data is the document body. Dates are expected as "YYYY-MM-DD" or RFC 3339 strings.
	Data map[string]interface{} `json:"data"`
}

// ChangeEvent is one mutation of a source document delivered by a change feed.
// Delivery is at-least-once; replaying an event is safe.
type ChangeEvent struct {
	// ID identifies the delivery, not the document. Assigned at intake when absent.
	ID string `json:"id"`

	Document SourceDocument `json:"document"`

	// ReceivedAt is when the change entered the system (server-side clock).
	ReceivedAt time.Time `json:"received_at"`

	// IngestSeq is the change-log position. Set by the database, not exposed in the API.
	IngestSeq int64 `json:"-"`
}

// Validate ensures the event carries a usable document envelope.
func (e *ChangeEvent) Validate() error {
	if e.Document.ID == "" {
		return fmt.Errorf("%w: document.id is required", ErrInvalidChange)
	}

	if e.Document.DocType == "" {
		return fmt.Errorf("%w: document.doc_type is required", ErrInvalidChange)
	}

	return nil
}
