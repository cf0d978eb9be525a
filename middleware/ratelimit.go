package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/simplex/contextx"
	"github.com/wyfcoding/simplex/limiter"
	"github.com/wyfcoding/simplex/response"
)

// RateLimit 按客户端 IP 限流，需放在 RequestID 之后。限流器出错时放行。
func RateLimit(l limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := contextx.GetIP(ctx)
		if key == "" {
			key = c.ClientIP()
		}

		allowed, err := l.Allow(ctx, key)
		switch {
		case err != nil:
			slog.ErrorContext(ctx, "rate limiter failed, request let through", "key", key, "error", err)
		case !allowed:
			slog.WarnContext(ctx, "request rejected by rate limiter", "key", key, "path", c.Request.URL.Path)
			c.Header("Retry-After", "1")
			response.Error(c, ErrRateLimited)
			c.Abort()
			return
		}
		c.Next()
	}
}
