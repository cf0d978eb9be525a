// Package response 提供了统一的 HTTP 响应封装，并把 xerrors 业务错误映射为 HTTP 状态码。
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/simplex/xerrors"
)

// HTTPStatusProvider 定义了能够提供 HTTP 状态码的错误接口。
type HTTPStatusProvider interface {
	HTTPStatus() int
}

// Body 统一响应体。
type Body struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// Success 发送标准的成功响应：HTTP 200，业务码 0。
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Body{Code: 0, Msg: "success", Data: data})
}

// SuccessWithRawData 发送不带 code/msg 包装的原始数据，用于健康检查等系统接口。
func SuccessWithRawData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Error 发送错误响应。*xerrors.Error 使用其业务码、消息与详情，
// 其他实现 HTTPStatusProvider 的错误只映射状态码，无法识别时返回 500。
func Error(c *gin.Context, err error) {
	if err == nil {
		Success(c, nil)
		return
	}

	if e, ok := xerrors.FromError(err); ok {
		c.JSON(e.HTTPStatus(), Body{Code: e.Code, Msg: e.Message, Detail: e.Detail})
		return
	}

	statusCode := http.StatusInternalServerError
	if e, ok := err.(HTTPStatusProvider); ok {
		statusCode = e.HTTPStatus()
	}
	c.JSON(statusCode, Body{Code: statusCode, Msg: err.Error()})
}

// ErrorWithStatus 发送 xerrors 大类无法表达的错误响应，比如请求体超限的 413。
func ErrorWithStatus(c *gin.Context, status, code int, msg, detail string) {
	c.JSON(status, Body{Code: code, Msg: msg, Detail: detail})
}
