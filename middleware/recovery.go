package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/simplex/contextx"
	"github.com/wyfcoding/simplex/response"
)

// Recovery 捕获 panic，记录堆栈与请求信息后返回 500。
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				ctx := c.Request.Context()
				args := append([]any{
					"error", err,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				}, contextx.LogArgs(ctx)...)
				logger.ErrorContext(ctx, "panic recovered", args...)

				if !c.Writer.Written() {
					response.Error(c, ErrPanic)
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
