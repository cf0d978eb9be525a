package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/wyfcoding/simplex/app"
	"github.com/wyfcoding/simplex/cache"
	"github.com/wyfcoding/simplex/config"
	"github.com/wyfcoding/simplex/idgen"
	"github.com/wyfcoding/simplex/logging"
	"github.com/wyfcoding/simplex/metrics"
	"github.com/wyfcoding/simplex/server"
	"github.com/wyfcoding/simplex/service"
	"github.com/wyfcoding/simplex/tracing"
)

func serveCmd(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	confPath := fs.String("conf", "configs/config.toml", "config file path (toml, yaml or json)")
	if err := fs.Parse(args); err != nil {
		return exitError
	}

	conf := config.Default()
	if err := config.Load(*confPath, conf); err != nil {
		fmt.Fprintf(stderr, "lpsolve serve: %v\n", err)
		return exitError
	}

	if err := serve(context.Background(), conf); err != nil {
		slog.Error("lpsolve serve exited with error", "error", err)
		return exitError
	}
	return exitOptimal
}

func serve(ctx context.Context, conf *config.Config) error {
	logging.InitLogger(conf.LoggingConfig("serve"))
	logger := logging.Default().Logger
	config.PrintWithMask(conf)

	if err := idgen.Init(conf.Snowflake); err != nil {
		return fmt.Errorf("init id generator: %w", err)
	}

	shutdownTracer, err := tracing.InitTracer(conf.Tracing, conf.Version)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}

	m := metrics.NewMetrics(conf.Server.Name)
	m.RegisterBuildInfo(conf.Server.Name, conf.Version)

	opts := []service.Option{service.WithMetrics(m), service.WithLogger(logger)}
	var resultCache *cache.BigCache
	if conf.Cache.Enabled {
		if resultCache, err = cache.NewBigCache(conf.Cache); err != nil {
			return fmt.Errorf("init result cache: %w", err)
		}
		opts = append(opts, service.WithCache(resultCache, conf.Cache.TTL))
	}
	svc := service.New(conf.Solver, conf.Service, opts...)

	var application *app.App
	engine, keyed := service.NewRouter(service.RouterDeps{
		Config:  conf,
		Service: svc,
		Metrics: m,
		Logger:  logger,
		Health:  func() error { return application.Healthy() },
	})

	config.RegisterReloadHook(svc.Reload)
	if keyed != nil {
		config.RegisterReloadHook(func(c *config.Config) {
			keyed.SetLimit(rate.Limit(c.RateLimit.Rate), c.RateLimit.Burst)
		})
	}

	addr := conf.Server.HTTP.Addr
	if addr == "" {
		addr = fmt.Sprintf(":%d", conf.Server.HTTP.Port)
	}
	httpServer := server.NewGinServer(engine, addr, logger, server.HTTPOptions{
		ReadTimeout:       conf.Server.HTTP.ReadTimeout,
		ReadHeaderTimeout: conf.Server.HTTP.ReadHeaderTimeout,
		WriteTimeout:      conf.Server.HTTP.WriteTimeout,
		IdleTimeout:       conf.Server.HTTP.IdleTimeout,
		MaxHeaderBytes:    conf.Server.HTTP.MaxHeaderBytes,
	})

	application = app.New(conf.Server.Name, logger,
		app.WithServer(httpServer),
		app.WithCleanup(func() {
			if err := shutdownTracer(context.Background()); err != nil {
				logger.Error("tracer shutdown failed", "error", err)
			}
		}),
		app.WithCleanup(func() {
			if resultCache == nil {
				return
			}
			if err := resultCache.Close(); err != nil {
				logger.Error("result cache close failed", "error", err)
			}
		}),
	)

	return application.Run(ctx)
}
