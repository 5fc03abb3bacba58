package projection

import (
	"github.com/aevon-lab/project-indica/internal/core/indicator"
)

// ResultQueryRequest represents a windowed query for one calculator.
type ResultQueryRequest struct {
	Indicator  string
	Calculator string
	// Keys holds one comma-separated group key per entry, in group_by order.
	Keys   []string
	Reduce bool
}

// ResultQueryResponse represents the response for a windowed query.
type ResultQueryResponse struct {
	Indicator  string           `json:"indicator"`
	Calculator string           `json:"calculator"`
	Keys       [][]interface{}  `json:"keys"`
	Reduce     bool             `json:"reduce"`
	Result     indicator.Result `json:"result"`
}
