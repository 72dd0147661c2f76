package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/autoscuolaaba/archivio-live-lezioni/internal/infra/logger"
)

const (
	// RequestIDHeader carries the correlation identifier, honoured from
	// the reverse proxy when it already assigned one.
	RequestIDHeader = "X-Request-ID"

	requestIDKey = "request_id"
)

// RequestID is the portal's single correlation mechanism: one identifier
// per request, echoed in the response header, attached to the gin
// context for error payloads, and planted in the request context for
// log enrichment.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		c.Writer.Header().Set(RequestIDHeader, reqID)
		c.Set(requestIDKey, reqID)
		c.Request = c.Request.WithContext(
			context.WithValue(c.Request.Context(), logger.RequestIDKey{}, reqID))

		c.Next()
	}
}

// GetRequestID returns the identifier assigned by RequestID, or "" when
// the middleware has not run.
func GetRequestID(c *gin.Context) string {
	if raw, exists := c.Get(requestIDKey); exists {
		if id, ok := raw.(string); ok {
			return id
		}
	}
	return ""
}
