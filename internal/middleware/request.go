package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"todopro/pkg/logger"
)

// RequestLogger tags each request context with a request id so every log
// line downstream carries it.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}
