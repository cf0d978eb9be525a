package middleware

import "github.com/wyfcoding/simplex/xerrors"

var (
	// ErrRateLimited 客户端超出令牌桶限额。
	ErrRateLimited = xerrors.New(xerrors.ErrLimitExceeded, 429101, "too many requests", "access rate limit exceeded", nil)
	// ErrRequestTimeout 请求在服务端超时。
	ErrRequestTimeout = xerrors.New(xerrors.ErrDeadlineExceeded, 504101, "request timeout", "", nil)
	// ErrPanic 处理过程中发生 panic。
	ErrPanic = xerrors.New(xerrors.ErrInternal, 500201, "internal server error", "an unexpected error occurred", nil)
)

// codeBodyTooLarge 请求体超限的业务码，HTTP 状态为 413。
const codeBodyTooLarge = 413101
