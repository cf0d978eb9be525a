package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/simplex/response"
)

// MaxBodyBytes 限制请求体大小。声明的 Content-Length 超限时直接返回 413，
// 否则用 http.MaxBytesReader 约束实际读取量，解码阶段读超会报错。limit <= 0 时不限制。
func MaxBodyBytes(limit int64) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	detail := "request body exceeds " + strconv.FormatInt(limit, 10) + " bytes"
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			response.ErrorWithStatus(c, http.StatusRequestEntityTooLarge, codeBodyTooLarge, "request body too large", detail)
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
