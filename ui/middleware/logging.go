package middleware

import (
	"time"

	"sliceinsight/internal"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request through logger. Server errors are
// logged at warn level, everything else at debug.
func RequestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		if status >= 500 {
			logger.Warn("%s %s -> %d in %v: %s", c.Request.Method, c.Request.URL.Path, status, time.Since(start), c.Errors.String())
			return
		}
		logger.Debug("%s %s -> %d in %v", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
	}
}
