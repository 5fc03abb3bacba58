package errors

const (
	HttpInternalError        = "internal_error"
	HttpInvalidJsonError     = "invalid_json"
	HttpValidationError      = "validation_failed"
	HttpDuplicateChangeError = "duplicate_change"
	HttpIndicatorNotFound    = "indicator_not_found"
	HttpCalculatorNotFound   = "calculator_not_found"
	HttpDocumentNotFound     = "document_not_found"
	HttpInvalidQueryError    = "invalid_query"
	HttpConfigurationError   = "configuration_error"
	HttpChangeLogUnavailable = "change_log_unavailable"
	HttpPayloadTooLargeError = "payload_too_large"
)

// ErrorResponse is the error response body for every API error.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
