package projection

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aevon-lab/project-indica/internal/core/aggregation"
	httperr "github.com/aevon-lab/project-indica/internal/core/errors"
	"github.com/aevon-lab/project-indica/internal/core/indicator"
	"github.com/aevon-lab/project-indica/internal/core/storage"
	storagemocks "github.com/aevon-lab/project-indica/internal/mocks/storage"
)

func get(t *testing.T, backend storage.Backend, target string) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	NewService(visitsRegistry(t), backend).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestService_HandleQueryResults_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)

	backend := storagemocks.NewBackend(t)
	backend.EXPECT().
		Reduce(mock.Anything, mock.MatchedBy(isDated)).
		Return(aggregation.NewStats(decimal.NewFromInt(4)), nil).
		Once()
	backend.EXPECT().
		Reduce(mock.Anything, mock.MatchedBy(isNull)).
		Return(aggregation.Stats{}, nil).
		Once()

	resp := get(t, backend, "/v1/results/clinic_visits/visits?key=north,2021")

	require.Equal(t, http.StatusOK, resp.Code)
	var out struct {
		Reduce bool            `json:"reduce"`
		Keys   [][]interface{} `json:"keys"`
		Result struct {
			Values map[string]string `json:"values"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	require.True(t, out.Reduce)
	require.Equal(t, "1", out.Result.Values["all_visits"])
	require.Equal(t, "0", out.Result.Values["total"])
}

func TestService_HandleQueryResults_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name          string
		target        string
		configure     func(b *storagemocks.Backend)
		wantStatus    int
		wantErrorType string
	}{
		{
			name:          "unknown indicator returns 404",
			target:        "/v1/results/nope/visits?key=north,2021",
			configure:     func(_ *storagemocks.Backend) {},
			wantStatus:    http.StatusNotFound,
			wantErrorType: httperr.HttpIndicatorNotFound,
		},
		{
			name:          "unknown calculator returns 404",
			target:        "/v1/results/clinic_visits/nope?key=north,2021",
			configure:     func(_ *storagemocks.Backend) {},
			wantStatus:    http.StatusNotFound,
			wantErrorType: httperr.HttpCalculatorNotFound,
		},
		{
			name:          "bad key returns 400",
			target:        "/v1/results/clinic_visits/visits?key=north,soon",
			configure:     func(_ *storagemocks.Backend) {},
			wantStatus:    http.StatusBadRequest,
			wantErrorType: httperr.HttpInvalidQueryError,
		},
		{
			name:          "bad reduce flag returns 400",
			target:        "/v1/results/clinic_visits/visits?key=north,2021&reduce=maybe",
			configure:     func(_ *storagemocks.Backend) {},
			wantStatus:    http.StatusBadRequest,
			wantErrorType: httperr.HttpInvalidQueryError,
		},
		{
			name:   "index error returns 500",
			target: "/v1/results/clinic_visits/visits?key=north,2021&reduce=false",
			configure: func(b *storagemocks.Backend) {
				b.EXPECT().IDs(mock.Anything, mock.Anything).Return(nil, errors.New("db failure")).Once()
			},
			wantStatus:    http.StatusInternalServerError,
			wantErrorType: httperr.HttpInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := storagemocks.NewBackend(t)
			tt.configure(backend)

			resp := get(t, backend, tt.target)

			require.Equal(t, tt.wantStatus, resp.Code)
			var out httperr.ErrorResponse
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
			require.Equal(t, tt.wantErrorType, out.ErrorType)
		})
	}
}

func TestService_HandleGetDocument(t *testing.T) {
	gin.SetMode(gin.TestMode)

	doc := &indicator.Document{
		ID:          "clinic_visits-p1",
		DocType:     "clinic_visits",
		SourceID:    "p1",
		GroupNames:  []string{"clinic", "year"},
		GroupValues: []interface{}{"north", float64(2021)},
	}

	t.Run("found", func(t *testing.T) {
		backend := storagemocks.NewBackend(t)
		backend.EXPECT().GetIndicator(mock.Anything, "clinic_visits-p1").Return(doc, nil).Once()

		resp := get(t, backend, "/v1/documents/clinic_visits/p1")

		require.Equal(t, http.StatusOK, resp.Code)
		var out indicator.Document
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
		require.Equal(t, "p1", out.SourceID)
		require.Equal(t, []string{"clinic", "year"}, out.GroupNames)
	})

	t.Run("missing document", func(t *testing.T) {
		backend := storagemocks.NewBackend(t)
		backend.EXPECT().GetIndicator(mock.Anything, "clinic_visits-p2").Return(nil, storage.ErrNotFound).Once()

		resp := get(t, backend, "/v1/documents/clinic_visits/p2")

		require.Equal(t, http.StatusNotFound, resp.Code)
		var out httperr.ErrorResponse
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
		require.Equal(t, httperr.HttpDocumentNotFound, out.ErrorType)
	})

	t.Run("store failure", func(t *testing.T) {
		backend := storagemocks.NewBackend(t)
		backend.EXPECT().GetIndicator(mock.Anything, "clinic_visits-p3").Return(nil, errors.New("timeout")).Once()

		resp := get(t, backend, "/v1/documents/clinic_visits/p3")

		require.Equal(t, http.StatusInternalServerError, resp.Code)
	})
}
