// Package middleware 提供了 Gin 的通用中间件实现。
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/simplex/contextx"
	"github.com/wyfcoding/simplex/idgen"
)

const (
	HeaderXRequestID = "X-Request-ID"
)

// RequestID 透传或生成请求 ID，并将其与客户端 IP 一起注入请求 Context。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderXRequestID)
		if requestID == "" {
			requestID = idgen.GenIDString()
		}

		ctx := contextx.WithRequestID(c.Request.Context(), requestID)
		ctx = contextx.WithIP(ctx, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)

		c.Header(HeaderXRequestID, requestID)

		c.Next()
	}
}
