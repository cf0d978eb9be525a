package app

import (
	"time"

	"github.com/wyfcoding/simplex/server"
)

// Option 配置应用程序。
type Option func(*options)

type options struct {
	servers         []server.Server
	cleanups        []func()       // 关闭时按逆序执行
	healthCheckers  []func() error // 就绪检查
	shutdownTimeout time.Duration
}

// WithHealthChecker 注册一个健康检查函数。
func WithHealthChecker(checker func() error) Option {
	return func(o *options) {
		if checker != nil {
			o.healthCheckers = append(o.healthCheckers, checker)
		}
	}
}

// WithServer 添加由应用程序管理的服务器。
func WithServer(servers ...server.Server) Option {
	return func(o *options) {
		o.servers = append(o.servers, servers...)
	}
}

// WithCleanup 添加关闭时执行的清理函数。
func WithCleanup(cleanup func()) Option {
	return func(o *options) {
		if cleanup != nil {
			o.cleanups = append(o.cleanups, cleanup)
		}
	}
}

// WithShutdownTimeout 设置停止服务器的最长等待时间。
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.shutdownTimeout = d
		}
	}
}
