package ingestion

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	v1 "github.com/aevon-lab/project-indica/internal/api/v1"
	httperr "github.com/aevon-lab/project-indica/internal/core/errors"
	"github.com/aevon-lab/project-indica/internal/core/storage"
	"github.com/aevon-lab/project-indica/internal/pipeline"
)

const (
	msgReadBodyFailed   = "Failed to read request body"
	msgInvalidJSON      = "Invalid JSON body"
	msgPersistFailed    = "Failed to persist change"
	msgDuplicateChange  = "Change already exists"
	msgTransformFailed  = "Failed to update indicators"
	msgChangeLogMissing = "Asynchronous intake requires a change log"

	statusCommitted = "committed"
	statusSkipped   = "skipped"
	statusAccepted  = "accepted"
)

// ingestionError carries the structured HTTP error shape from a helper back to the handler.
type ingestionError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *ingestionError) Error() string {
	return e.message
}

// IngestResponse is the body of a successful intake.
type IngestResponse struct {
	Status    string                  `json:"status"`
	ChangeID  string                  `json:"change_id"`
	IngestSeq int64                   `json:"ingest_seq,omitempty"`
	Results   []pipeline.CommitResult `json:"results,omitempty"`
}

// IngestHandler handles POST /v1/changes. By default the change is transformed
// before the response is written; with ?async=true it is only appended to the
// change log for the scheduler.
func (s *Service) IngestHandler(c *gin.Context) {
	evt, payloadSize, ierr := s.parseChange(c)
	if ierr != nil {
		writeError(c, ierr)
		return
	}

	if err := evt.Validate(); err != nil {
		slog.Warn("[Ingestion] Envelope validation failed", "error", err, "change_id", evt.ID)
		writeError(c, &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpValidationError,
			message:    err.Error(),
		})
		return
	}

	async, _ := strconv.ParseBool(c.Query("async"))
	slog.Info("[Ingestion] Received change",
		"change_id", evt.ID,
		"source_id", evt.Document.ID,
		"doc_type", evt.Document.DocType,
		"domain", evt.Document.Domain,
		"payload_size", payloadSize,
		"async", async,
	)

	if async {
		if ierr := s.appendChange(c.Request.Context(), evt); ierr != nil {
			writeError(c, ierr)
			return
		}
		c.JSON(http.StatusAccepted, IngestResponse{Status: statusAccepted, ChangeID: evt.ID, IngestSeq: evt.IngestSeq})
		return
	}

	results, ierr := s.transform(c.Request.Context(), evt)
	if ierr != nil {
		writeError(c, ierr)
		return
	}

	status := statusSkipped
	for _, r := range results {
		if !r.Skipped {
			status = statusCommitted
			break
		}
	}
	c.JSON(http.StatusOK, IngestResponse{Status: status, ChangeID: evt.ID, Results: results})
}

// parseChange reads the size-limited body and binds it into a ChangeEvent.
func (s *Service) parseChange(c *gin.Context) (*v1.ChangeEvent, int, *ingestionError) {
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("[Ingestion] Failed to read request body", "error", err)
		return nil, 0, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("[Ingestion] Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		return nil, len(bodyBytes), &ingestionError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpPayloadTooLargeError,
			message:    "Request body exceeds maximum allowed size",
			details: map[string]interface{}{
				"max_size_bytes": maxBytes,
			},
		}
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	var evt v1.ChangeEvent
	if err := c.ShouldBindJSON(&evt); err != nil {
		slog.Warn("[Ingestion] Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		return nil, len(bodyBytes), &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
		}
	}

	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	evt.ReceivedAt = time.Now().UTC()
	evt.IngestSeq = 0
	return &evt, len(bodyBytes), nil
}

func (s *Service) appendChange(ctx context.Context, evt *v1.ChangeEvent) *ingestionError {
	if s.changes == nil {
		return &ingestionError{
			statusCode: http.StatusServiceUnavailable,
			errorType:  httperr.HttpChangeLogUnavailable,
			message:    msgChangeLogMissing,
		}
	}

	if err := s.changes.AppendChange(ctx, evt); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			slog.Info("[Ingestion] Duplicate change rejected", "change_id", evt.ID, "source_id", evt.Document.ID)
			return &ingestionError{
				statusCode: http.StatusConflict,
				errorType:  httperr.HttpDuplicateChangeError,
				message:    msgDuplicateChange,
			}
		}

		slog.Error("[Ingestion] Failed to persist change", "error", err, "change_id", evt.ID)
		return &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgPersistFailed,
		}
	}

	if s.notifier != nil {
		s.notifier.Notify()
	}
	return nil
}

func (s *Service) transform(ctx context.Context, evt *v1.ChangeEvent) ([]pipeline.CommitResult, *ingestionError) {
	results, err := s.transformer.Transform(ctx, evt)
	if err == nil {
		return results, nil
	}

	if pipeline.IsPermanent(err) {
		slog.Warn("[Ingestion] Change rejected by indicator definitions", "error", err, "change_id", evt.ID)
		return nil, &ingestionError{
			statusCode: http.StatusUnprocessableEntity,
			errorType:  httperr.HttpValidationError,
			message:    err.Error(),
			details:    map[string]interface{}{"source_id": evt.Document.ID},
		}
	}

	slog.Error("[Ingestion] Failed to transform change", "error", err, "change_id", evt.ID)
	return nil, &ingestionError{
		statusCode: http.StatusInternalServerError,
		errorType:  httperr.HttpInternalError,
		message:    msgTransformFailed,
	}
}

// writeError serializes an ingestionError as the JSON HTTP response.
func writeError(c *gin.Context, err *ingestionError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
