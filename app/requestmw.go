// app/requestmw.go
package app

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with an id (the caller's, if it sent one) and
// stores a logger carrying it under "log".
func RequestID(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Set("requestID", id)
		c.Set("log", base.With("request_id", id))
		c.Next()
	}
}

// Logger returns the request-scoped logger set by RequestID.
func Logger(c *gin.Context) *slog.Logger {
	if v, ok := c.Get("log"); ok {
		if l, ok := v.(*slog.Logger); ok {
			return l
		}
	}
	return slog.Default()
}
