package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogging returns a middleware that logs requests at debug level
// using the provided sugared logger.
func RequestLogging(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		dur := time.Since(start)
		logger.Debugw("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"remote", c.ClientIP(),
			"status", c.Writer.Status(),
			"duration_ms", float64(dur.Microseconds())/1000.0,
			"size", c.Writer.Size(),
		)
	}
}
