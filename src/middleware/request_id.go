package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/khabaroff/metrology-license-registry/src/logging"
)

// RequestIDKey is the context key for request ID
const RequestIDKey = "request_id"

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLength = 64

// RequestIDMiddleware adds a unique request ID to each request and attaches
// a logger carrying it to the request context
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			// Short UUID for readability
			requestID = uuid.New().String()[:8]
		}

		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		logger := logging.WithRequestID(requestID)
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))

		c.Next()
	}
}

// GetRequestID retrieves the request ID from context
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(RequestIDKey); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
