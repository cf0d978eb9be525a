// Package app 管理应用程序的生命周期：启动服务器、监听退出信号、优雅关闭与资源清理。
package app

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sourcegraph/conc"
)

const defaultShutdownTimeout = 10 * time.Second

// App 是应用程序的核心容器。
type App struct {
	name   string
	logger *slog.Logger
	opts   options
}

// New 创建一个新的应用程序实例。
func New(name string, logger *slog.Logger, opts ...Option) *App {
	o := options{shutdownTimeout: defaultShutdownTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &App{name: name, logger: logger, opts: o}
}

// Run 启动所有注册的服务器并阻塞，直到收到 SIGINT/SIGTERM、ctx 被取消或任一服务器失败。
// 随后在超时内停止全部服务器，并按注册的逆序执行清理函数。
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("application starting", "name", a.name, "pid", os.Getpid())

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var wg conc.WaitGroup
	for _, srv := range a.opts.servers {
		wg.Go(func() {
			if err := srv.Start(ctx); err != nil {
				a.logger.Error("server failed", "error", err)
				cancel(err)
			}
		})
	}

	<-ctx.Done()
	runErr := context.Cause(ctx)
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}
	a.logger.Info("shutting down application", "name", a.name)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.opts.shutdownTimeout)
	defer shutdownCancel()

	var stopErrs []error
	for _, srv := range a.opts.servers {
		if err := srv.Stop(shutdownCtx); err != nil {
			a.logger.Error("server failed to stop", "error", err)
			stopErrs = append(stopErrs, err)
		}
	}
	wg.Wait()

	for i := len(a.opts.cleanups) - 1; i >= 0; i-- {
		a.opts.cleanups[i]()
	}

	a.logger.Info("application shut down", "name", a.name)
	return errors.Join(append([]error{runErr}, stopErrs...)...)
}

// Healthy 依次执行注册的健康检查，返回第一个失败。
func (a *App) Healthy() error {
	for _, check := range a.opts.healthCheckers {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}
