package config

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// SlowRequestThreshold marks requests worth a warning.
const SlowRequestThreshold = 200 * time.Millisecond

// PerformanceLogger logs every request with its latency and warns about
// slow ones.
func PerformanceLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		if latency > SlowRequestThreshold {
			logger.Warn("slow request", attrs...)
			return
		}
		logger.Info("request", attrs...)
	}
}
