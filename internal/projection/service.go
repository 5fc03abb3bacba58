package projection

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aevon-lab/project-indica/internal/core/indicator"
	"github.com/aevon-lab/project-indica/internal/core/storage"
)

var (
	// ErrInvalidQuery marks request validation errors that should return HTTP 400.
	ErrInvalidQuery = errors.New("invalid indicator query")

	// ErrUnknownIndicator is returned for an indicator type that is not registered.
	ErrUnknownIndicator = errors.New("unknown indicator")
)

// Service implements the read side: windowed queries and stored documents.
type Service struct {
	registry *indicator.Registry
	backend  storage.Backend
}

// NewService creates a new projection service.
func NewService(registry *indicator.Registry, backend storage.Backend) *Service {
	return &Service{registry: registry, backend: backend}
}

// QueryResults runs the windowed query. One key goes through QueryWindow,
// several through AggregateAcrossKeys.
func (s *Service) QueryResults(ctx context.Context, req ResultQueryRequest) (*ResultQueryResponse, error) {
	t, ok := s.registry.Get(req.Indicator)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIndicator, req.Indicator)
	}
	if !t.HasCalculator(req.Calculator) {
		return nil, fmt.Errorf("%w: %s.%s", indicator.ErrUnknownCalculator, req.Indicator, req.Calculator)
	}

	keys, err := parseKeys(t, req.Keys)
	if err != nil {
		return nil, err
	}

	var res indicator.Result
	if len(keys) == 1 {
		res, err = t.QueryWindow(ctx, s.backend, req.Calculator, keys[0], req.Reduce)
	} else {
		res, err = t.AggregateAcrossKeys(ctx, s.backend, req.Calculator, keys, req.Reduce)
	}
	if err != nil {
		return nil, fmt.Errorf("query %s.%s: %w", req.Indicator, req.Calculator, err)
	}

	return &ResultQueryResponse{
		Indicator:  req.Indicator,
		Calculator: req.Calculator,
		Keys:       keys,
		Reduce:     req.Reduce,
		Result:     res,
	}, nil
}

// GetDocument returns the stored indicator document computed from sourceID.
func (s *Service) GetDocument(ctx context.Context, indicatorName, sourceID string) (*indicator.Document, error) {
	t, ok := s.registry.Get(indicatorName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIndicator, indicatorName)
	}
	doc, err := s.backend.GetIndicator(ctx, t.DocumentID(sourceID))
	if err != nil {
		return nil, fmt.Errorf("get %s document for %s: %w", indicatorName, sourceID, err)
	}
	return doc, nil
}

// parseKeys turns comma-separated group keys into typed group values. Integer
// attributes are parsed; date attributes are validated and kept as strings.
func parseKeys(t *indicator.Type, raw []string) ([][]interface{}, error) {
	names := t.GroupNames()
	types := t.GroupTypeMap()

	if len(raw) == 0 {
		if len(names) > 0 {
			return nil, invalidQueryf("key is required (group by %s)", strings.Join(names, ","))
		}
		return [][]interface{}{{}}, nil
	}

	keys := make([][]interface{}, 0, len(raw))
	for _, k := range raw {
		var parts []string
		if k != "" {
			parts = strings.Split(k, ",")
		}
		if len(parts) != len(names) {
			return nil, invalidQueryf("key %q has %d parts, want %d (%s)", k, len(parts), len(names), strings.Join(names, ","))
		}

		key := make([]interface{}, len(parts))
		for i, part := range parts {
			switch types[names[i]] {
			case indicator.GroupTypeInteger:
				n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
				if err != nil {
					return nil, invalidQueryf("key %q: %s must be an integer", k, names[i])
				}
				key[i] = n
			case indicator.GroupTypeDate:
				if _, err := indicator.ParseDate(strings.TrimSpace(part)); err != nil {
					return nil, invalidQueryf("key %q: %s must be a date", k, names[i])
				}
				key[i] = strings.TrimSpace(part)
			default:
				key[i] = part
			}
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func invalidQueryf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...))
}
