package errors

const (
	HttpInternalError         = "internal_error"
	HttpInvalidJsonError      = "invalid_json"
	HttpInvalidQueryError     = "invalid_query"
	HttpValidationError       = "validation_failed"
	HttpRecordNotFoundError   = "record_not_found"
	HttpConflictError         = "conflict"
	HttpBodyTooLargeError     = "body_too_large"
	HttpServiceUnavailableErr = "service_unavailable"
)

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
