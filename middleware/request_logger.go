package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/simplex/contextx"
)

// Logger 访问日志中间件。耗时超过 slowThreshold（大于 0 时）的请求以 Warn 级别记录。
func Logger(logger *slog.Logger, slowThreshold time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		cost := time.Since(start)
		ctx := c.Request.Context()
		args := append([]any{
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", path,
			"query", c.Request.URL.RawQuery,
			"cost", cost,
			"user_agent", c.Request.UserAgent(),
		}, contextx.LogArgs(ctx)...)
		if len(c.Errors) > 0 {
			args = append(args, "errors", c.Errors.String())
		}

		if slowThreshold > 0 && cost > slowThreshold {
			logger.WarnContext(ctx, "slow http request", args...)
			return
		}
		logger.InfoContext(ctx, "http request", args...)
	}
}
