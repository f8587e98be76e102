package ingestion

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	v1 "github.com/logistics-lab/palletbook/internal/api/v1"
	httperr "github.com/logistics-lab/palletbook/internal/core/errors"
	"github.com/logistics-lab/palletbook/internal/core/storage"
	"github.com/logistics-lab/palletbook/internal/core/validation"
	"github.com/logistics-lab/palletbook/pkg/logger"
)

const (
	headerUserID   = "X-User-ID"
	headerUserName = "X-User-Name"

	msgReadBodyFailed  = "Failed to read request body"
	msgInvalidJSON     = "Invalid JSON body"
	msgMutationFailed  = "Failed to apply change"
	msgRecordNotFound  = "Work record not found"
	msgDuplicateRecord = "Work record already exists"
	msgConflict        = "Concurrent update conflict, retry the request"
)

// ingestionError carries the structured HTTP error shape from a helper back to the orchestrator.
// Helpers return this instead of writing to gin.Context directly, keeping them decoupled from HTTP.
type ingestionError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *ingestionError) Error() string {
	return e.message
}

// CreateHandler handles POST /v1/companies/:company_id/records
func (s *Service) CreateHandler(c *gin.Context) {
	rec, ierr := s.parseRecord(c)
	if ierr != nil {
		writeError(c, ierr)
		return
	}
	rec.CompanyID = c.Param("company_id")

	created, err := s.Create(c.Request.Context(), rec, authorOf(c))
	if err != nil {
		writeError(c, toIngestionError(err))
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateHandler handles PUT /v1/companies/:company_id/records/:record_id
func (s *Service) UpdateHandler(c *gin.Context) {
	rec, ierr := s.parseRecord(c)
	if ierr != nil {
		writeError(c, ierr)
		return
	}

	updated, err := s.Update(c.Request.Context(), c.Param("company_id"), c.Param("record_id"), rec, authorOf(c))
	if err != nil {
		writeError(c, toIngestionError(err))
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteHandler handles DELETE /v1/companies/:company_id/records/:record_id
func (s *Service) DeleteHandler(c *gin.Context) {
	if err := s.Delete(c.Request.Context(), c.Param("company_id"), c.Param("record_id")); err != nil {
		writeError(c, toIngestionError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// RebuildHandler handles POST /v1/companies/:company_id/summaries/:year/:month/rebuild
func (s *Service) RebuildHandler(c *gin.Context) {
	year, yErr := strconv.Atoi(c.Param("year"))
	month, mErr := strconv.Atoi(c.Param("month"))
	if yErr != nil || mErr != nil {
		writeError(c, &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidQueryError,
			message:    "Invalid path parameters",
			details:    "year and month must be integers",
		})
		return
	}

	doc, err := s.Rebuild(c.Request.Context(), c.Param("company_id"), year, month)
	if err != nil {
		writeError(c, toIngestionError(err))
		return
	}
	c.JSON(http.StatusOK, doc)
}

// parseRecord reads the raw request body under the size limit and binds it into a WorkRecord.
func (s *Service) parseRecord(c *gin.Context) (*v1.WorkRecord, *ingestionError) {
	ctx := c.Request.Context()

	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		logger.Error(ctx, "[Ingestion] Failed to read request body", "error", err)
		return nil, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(bodyBytes)) > maxBytes {
		logger.Warn(ctx, "[Ingestion] Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		return nil, &ingestionError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpBodyTooLargeError,
			message:    "Request body exceeds maximum allowed size",
			details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		}
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	var rec v1.WorkRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		logger.Warn(ctx, "[Ingestion] Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		return nil, &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
			details:    err.Error(),
		}
	}
	return &rec, nil
}

func authorOf(c *gin.Context) Author {
	return Author{
		ID:   c.GetHeader(headerUserID),
		Name: c.GetHeader(headerUserName),
	}
}

// toIngestionError maps a coordinator error onto its HTTP shape.
func toIngestionError(err error) *ingestionError {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpValidationError,
			message:    verr.Error(),
			details:    verr.Details(),
		}
	case errors.Is(err, storage.ErrNotFound):
		return &ingestionError{
			statusCode: http.StatusNotFound,
			errorType:  httperr.HttpRecordNotFoundError,
			message:    msgRecordNotFound,
		}
	case errors.Is(err, storage.ErrDuplicate):
		return &ingestionError{
			statusCode: http.StatusConflict,
			errorType:  httperr.HttpConflictError,
			message:    msgDuplicateRecord,
		}
	case errors.Is(err, storage.ErrConflict):
		return &ingestionError{
			statusCode: http.StatusConflict,
			errorType:  httperr.HttpConflictError,
			message:    msgConflict,
		}
	default:
		return &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgMutationFailed,
		}
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
