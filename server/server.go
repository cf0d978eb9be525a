package server

import "context"

// Server 定义了可被 app 统一管理生命周期的服务器。
type Server interface {
	// Start 阻塞运行，直到 ctx 被取消（此时优雅关闭）或监听失败。
	Start(ctx context.Context) error
	// Stop 等待在途请求完成并释放资源。
	Stop(ctx context.Context) error
}
