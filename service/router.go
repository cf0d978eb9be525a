package service

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/wyfcoding/simplex/config"
	"github.com/wyfcoding/simplex/limiter"
	"github.com/wyfcoding/simplex/metrics"
	"github.com/wyfcoding/simplex/middleware"
	"github.com/wyfcoding/simplex/server"
)

// RouterDeps 构建 HTTP 引擎所需的依赖。
type RouterDeps struct {
	Config  *config.Config
	Service *Service
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	Health  func() error
}

// NewRouter 组装中间件链并注册全部路由。返回的限流器为 nil 表示未启用限流，可在配置热更新时调整。
func NewRouter(deps RouterDeps) (*gin.Engine, *limiter.KeyedLimiter) {
	conf := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metricsPath := conf.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	mws := []gin.HandlerFunc{
		middleware.Recovery(logger),
		middleware.RequestID(),
	}
	if conf.Tracing.Enabled {
		mws = append(mws, middleware.Tracing(conf.Server.Name, "/healthz", metricsPath))
	}
	mws = append(mws,
		middleware.Logger(logger, conf.Log.SlowThreshold),
		middleware.HTTPMetrics(deps.Metrics, "/healthz", metricsPath),
	)

	var keyed *limiter.KeyedLimiter
	if conf.RateLimit.Enabled {
		keyed = limiter.NewKeyedLimiter(rate.Limit(conf.RateLimit.Rate), conf.RateLimit.Burst, 0)
		mws = append(mws, middleware.RateLimit(keyed))
	}
	mws = append(mws,
		middleware.MaxBodyBytes(conf.Server.HTTP.MaxBodyBytes),
		middleware.Timeout(conf.Service.Timeout),
	)

	engine := server.NewGinEngine(conf.Server.Environment, mws...)
	NewHandler(deps.Service, deps.Health).Register(engine)
	if conf.Metrics.Enabled && deps.Metrics != nil {
		engine.GET(metricsPath, gin.WrapH(deps.Metrics.Handler()))
	}
	return engine, keyed
}
