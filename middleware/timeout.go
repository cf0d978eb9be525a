package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/simplex/response"
)

// Timeout 给请求 Context 加上截止时间，求解服务在截止后立即返回。
// 处理函数返回时已超时且没有写出响应，则补写 504。
func Timeout(d time.Duration) gin.HandlerFunc {
	if d <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if !c.Writer.Written() && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			response.Error(c, ErrRequestTimeout.Detailf("exceeded %s", d))
			c.Abort()
		}
	}
}
