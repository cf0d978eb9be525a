// Package contextx 在 context.Context 中安全地注入与提取请求级信息，私有 Key 类型避免跨包冲突。
package contextx

import (
	"context"
)

type contextKey int

const (
	RequestIDKey contextKey = iota // 请求唯一标识
	IPKey                          // 客户端 IP
	SolveIDKey                     // 单次求解的唯一标识
)

// KeyNames 映射 Key 到日志字段名。
var KeyNames = map[contextKey]string{
	RequestIDKey: "request_id",
	IPKey:        "client_ip",
	SolveIDKey:   "solve_id",
}

// WithRequestID 将请求 ID 注入到 Context 中。
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID 从 Context 中提取请求 ID。
func GetRequestID(ctx context.Context) string {
	return get(ctx, RequestIDKey)
}

// WithIP 将客户端 IP 地址注入到 Context 中。
func WithIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, IPKey, ip)
}

// GetIP 从 Context 中提取客户端 IP。
func GetIP(ctx context.Context) string {
	return get(ctx, IPKey)
}

// WithSolveID 将求解 ID 注入到 Context 中。
func WithSolveID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, SolveIDKey, id)
}

// GetSolveID 从 Context 中提取求解 ID。
func GetSolveID(ctx context.Context) string {
	return get(ctx, SolveIDKey)
}

// LogArgs 将 Context 中存在的字段展开为 slog 风格的键值对。
func LogArgs(ctx context.Context) []any {
	var args []any
	for _, key := range []contextKey{RequestIDKey, IPKey, SolveIDKey} {
		if v := get(ctx, key); v != "" {
			args = append(args, KeyNames[key], v)
		}
	}
	return args
}

func get(ctx context.Context, key contextKey) string {
	if val, ok := ctx.Value(key).(string); ok {
		return val
	}
	return ""
}
