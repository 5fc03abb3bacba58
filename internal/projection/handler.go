package projection

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	httperr "github.com/aevon-lab/project-indica/internal/core/errors"
	"github.com/aevon-lab/project-indica/internal/core/indicator"
	"github.com/aevon-lab/project-indica/internal/core/storage"
)

// RegisterRoutes registers all projection API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/results/:indicator/:calculator", s.HandleQueryResults)
	r.GET("/v1/documents/:indicator/:source_id", s.HandleGetDocument)
}

// HandleQueryResults handles GET /v1/results/:indicator/:calculator
// Query parameters: key (repeatable, comma-separated group values), reduce
func (s *Service) HandleQueryResults(c *gin.Context) {
	var uri struct {
		Indicator  string `uri:"indicator" binding:"required"`
		Calculator string `uri:"calculator" binding:"required"`
	}
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid path parameters",
			Details:   err.Error(),
		})
		return
	}

	reduce := true
	if raw, ok := c.GetQuery("reduce"); ok {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidQueryError,
				Message:   "Invalid query parameters",
				Details:   "reduce must be true or false",
			})
			return
		}
		reduce = parsed
	}

	req := ResultQueryRequest{
		Indicator:  uri.Indicator,
		Calculator: uri.Calculator,
		Keys:       c.QueryArray("key"),
		Reduce:     reduce,
	}

	resp, err := s.QueryResults(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownIndicator):
			c.JSON(http.StatusNotFound, httperr.ErrorResponse{
				ErrorType: httperr.HttpIndicatorNotFound,
				Message:   "Indicator not found",
				Details:   err.Error(),
			})
		case errors.Is(err, indicator.ErrUnknownCalculator):
			c.JSON(http.StatusNotFound, httperr.ErrorResponse{
				ErrorType: httperr.HttpCalculatorNotFound,
				Message:   "Calculator not found",
				Details:   err.Error(),
			})
		case errors.Is(err, ErrInvalidQuery):
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidQueryError,
				Message:   "Invalid indicator query",
				Details:   err.Error(),
			})
		case errors.Is(err, indicator.ErrEmitterType), errors.Is(err, indicator.ErrUnboundCalculator):
			slog.Error("[Projection] Indicator misconfigured", "indicator", req.Indicator, "calculator", req.Calculator, "error", err)
			c.JSON(http.StatusUnprocessableEntity, httperr.ErrorResponse{
				ErrorType: httperr.HttpConfigurationError,
				Message:   "Indicator cannot answer windowed queries",
				Details:   err.Error(),
			})
		default:
			slog.Error("[Projection] Query failed", "indicator", req.Indicator, "calculator", req.Calculator, "error", err)
			c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
				ErrorType: httperr.HttpInternalError,
				Message:   "Failed to query indicator",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleGetDocument handles GET /v1/documents/:indicator/:source_id
func (s *Service) HandleGetDocument(c *gin.Context) {
	name := c.Param("indicator")
	sourceID := c.Param("source_id")

	doc, err := s.GetDocument(c.Request.Context(), name, sourceID)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownIndicator):
			c.JSON(http.StatusNotFound, httperr.ErrorResponse{
				ErrorType: httperr.HttpIndicatorNotFound,
				Message:   "Indicator not found",
				Details:   err.Error(),
			})
		case errors.Is(err, storage.ErrNotFound):
			c.JSON(http.StatusNotFound, httperr.ErrorResponse{
				ErrorType: httperr.HttpDocumentNotFound,
				Message:   "Indicator document not found",
				Details:   map[string]string{"indicator": name, "source_id": sourceID},
			})
		default:
			slog.Error("[Projection] Document lookup failed", "indicator", name, "source_id", sourceID, "error", err)
			c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
				ErrorType: httperr.HttpInternalError,
				Message:   "Failed to load indicator document",
			})
		}
		return
	}

	c.JSON(http.StatusOK, doc)
}
