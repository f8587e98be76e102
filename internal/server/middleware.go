package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	httperr "github.com/logistics-lab/palletbook/internal/core/errors"
	"github.com/logistics-lab/palletbook/pkg/logger"
)

const HeaderRequestID = "X-Request-ID"

// RequestID takes the caller's X-Request-ID or generates one, echoes it on the
// response and stores it with a request-scoped logger on the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)

		ctx := logger.WithRequestID(c.Request.Context(), id)
		ctx = logger.WithLogger(ctx, logger.Default().WithComponent("http"))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AccessLog logs one line per request.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ctx := c.Request.Context()
		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error(ctx, "[HTTP] request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn(ctx, "[HTTP] request", fields...)
		default:
			logger.Info(ctx, "[HTTP] request", fields...)
		}
	}
}

// Recovery turns a handler panic into a 500 internal_error response.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error(c.Request.Context(), "[HTTP] panic recovered", "panic", recovered, "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Internal server error",
		})
	})
}
