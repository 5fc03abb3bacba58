package projection

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aevon-lab/project-indica/internal/core/aggregation"
	"github.com/aevon-lab/project-indica/internal/core/indicator"
	"github.com/aevon-lab/project-indica/internal/core/storage"
	storagemocks "github.com/aevon-lab/project-indica/internal/mocks/storage"
)

func TestService_QueryResults_SingleKeyReduce(t *testing.T) {
	backend := storagemocks.NewBackend(t)
	backend.EXPECT().
		Reduce(mock.Anything, mock.MatchedBy(func(q indicator.RangeQuery) bool {
			return isDated(q) && q.Emitter == "all_visits" &&
				q.Start == "2020-12-29" && q.End == "2021-01-05"
		})).
		Return(aggregation.NewStats(decimal.NewFromInt(1), decimal.NewFromInt(1)), nil).
		Once()
	backend.EXPECT().
		Reduce(mock.Anything, mock.MatchedBy(func(q indicator.RangeQuery) bool {
			return isNull(q) && q.Emitter == "total"
		})).
		Return(aggregation.NewStats(decimal.NewFromInt(3)), nil).
		Once()

	svc := NewService(visitsRegistry(t), backend)
	resp, err := svc.QueryResults(context.Background(), ResultQueryRequest{
		Indicator:  "clinic_visits",
		Calculator: "visits",
		Keys:       []string{"north,2021"},
		Reduce:     true,
	})

	require.NoError(t, err)
	require.Equal(t, [][]interface{}{{"north", int64(2021)}}, resp.Keys)
	require.True(t, decimal.NewFromInt(2).Equal(resp.Result.Values["all_visits"]))
	require.True(t, decimal.NewFromInt(3).Equal(resp.Result.Values["total"]))
}

func TestService_QueryResults_ManyKeysIDs(t *testing.T) {
	backend := storagemocks.NewBackend(t)
	backend.EXPECT().
		IDs(mock.Anything, mock.MatchedBy(func(q indicator.RangeQuery) bool {
			return isDated(q) && q.Group[0] == "north"
		})).
		Return([]string{"clinic_visits-p2", "clinic_visits-p1"}, nil).
		Once()
	backend.EXPECT().
		IDs(mock.Anything, mock.MatchedBy(func(q indicator.RangeQuery) bool {
			return isDated(q) && q.Group[0] == "south"
		})).
		Return([]string{"clinic_visits-p1", "clinic_visits-p3"}, nil).
		Once()
	backend.EXPECT().
		IDs(mock.Anything, mock.MatchedBy(isNull)).
		Return([]string(nil), nil).
		Twice()

	svc := NewService(visitsRegistry(t), backend)
	resp, err := svc.QueryResults(context.Background(), ResultQueryRequest{
		Indicator:  "clinic_visits",
		Calculator: "visits",
		Keys:       []string{"north,2021", "south,2021"},
	})

	require.NoError(t, err)
	require.Equal(t, []string{"p1", "p2", "p3"}, resp.Result.IDs["all_visits"])
	require.Empty(t, resp.Result.IDs["total"])
}

func TestService_QueryResults_Errors(t *testing.T) {
	tests := []struct {
		name    string
		req     ResultQueryRequest
		wantErr error
	}{
		{
			name:    "unknown indicator",
			req:     ResultQueryRequest{Indicator: "nope", Calculator: "visits", Keys: []string{"north,2021"}},
			wantErr: ErrUnknownIndicator,
		},
		{
			name:    "unknown calculator",
			req:     ResultQueryRequest{Indicator: "clinic_visits", Calculator: "nope", Keys: []string{"north,2021"}},
			wantErr: indicator.ErrUnknownCalculator,
		},
		{
			name:    "missing key",
			req:     ResultQueryRequest{Indicator: "clinic_visits", Calculator: "visits"},
			wantErr: ErrInvalidQuery,
		},
		{
			name:    "wrong arity",
			req:     ResultQueryRequest{Indicator: "clinic_visits", Calculator: "visits", Keys: []string{"north"}},
			wantErr: ErrInvalidQuery,
		},
		{
			name:    "non integer year",
			req:     ResultQueryRequest{Indicator: "clinic_visits", Calculator: "visits", Keys: []string{"north,twenty"}},
			wantErr: ErrInvalidQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(visitsRegistry(t), storagemocks.NewBackend(t))
			_, err := svc.QueryResults(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_QueryResults_IndexError(t *testing.T) {
	backend := storagemocks.NewBackend(t)
	backend.EXPECT().
		Reduce(mock.Anything, mock.Anything).
		Return(aggregation.Stats(nil), errors.New("index offline")).
		Once()

	svc := NewService(visitsRegistry(t), backend)
	_, err := svc.QueryResults(context.Background(), ResultQueryRequest{
		Indicator:  "clinic_visits",
		Calculator: "visits",
		Keys:       []string{"north,2021"},
		Reduce:     true,
	})

	require.Error(t, err)
	require.Contains(t, err.Error(), "index offline")
}

func TestService_GetDocument(t *testing.T) {
	doc := &indicator.Document{ID: "clinic_visits-p1", DocType: "clinic_visits", SourceID: "p1"}

	backend := storagemocks.NewBackend(t)
	backend.EXPECT().GetIndicator(mock.Anything, "clinic_visits-p1").Return(doc, nil).Once()
	backend.EXPECT().GetIndicator(mock.Anything, "clinic_visits-p9").Return(nil, storage.ErrNotFound).Once()

	svc := NewService(visitsRegistry(t), backend)

	got, err := svc.GetDocument(context.Background(), "clinic_visits", "p1")
	require.NoError(t, err)
	require.Equal(t, doc, got)

	_, err = svc.GetDocument(context.Background(), "clinic_visits", "p9")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = svc.GetDocument(context.Background(), "nope", "p1")
	require.ErrorIs(t, err, ErrUnknownIndicator)
}
