// Package metrics 封装了独立的 Prometheus 注册表以及 HTTP 与求解器的标准指标。
package metrics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 封装了指标注册表及预定义的监控指标。
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec   // HTTP 请求总量 (维度: method, path, status)
	HTTPRequestDuration *prometheus.HistogramVec // HTTP 请求耗时分布
	HTTPInFlight        prometheus.Gauge         // 正在处理的 HTTP 请求数

	SolvesTotal   *prometheus.CounterVec // 求解次数 (维度: status)
	SolvePivots   prometheus.Histogram   // 单次求解的主元次数
	SolveDuration prometheus.Histogram   // 单次求解耗时
	CacheRequests *prometheus.CounterVec // 结果缓存访问 (维度: result=hit|miss)

	SolverOptions *prometheus.GaugeVec // 当前求解参数 (维度: option)
	BuildInfo     *prometheus.GaugeVec
}

// NewMetrics 初始化指标采集器，并注册 Go 运行时指标和进程指标。
func NewMetrics(serviceName string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: reg}

	m.HTTPRequestsTotal = m.NewCounterVec(prometheus.CounterOpts{
		Name: "http_server_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	m.HTTPRequestDuration = m.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_server_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	m.HTTPInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_server_requests_in_flight",
		Help: "Number of HTTP requests being served",
	})
	reg.MustRegister(m.HTTPInFlight)

	m.SolvesTotal = m.NewCounterVec(prometheus.CounterOpts{
		Name: "simplex_solves_total",
		Help: "Total number of linear programs solved, by outcome",
	}, []string{"status"})

	m.SolvePivots = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "simplex_pivots",
		Help:    "Pivot operations per solve across both phases",
		Buckets: prometheus.ExponentialBuckets(1, 2, 14),
	})
	m.SolveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "simplex_solve_duration_seconds",
		Help:    "Wall time of a single solve",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	})
	reg.MustRegister(m.SolvePivots, m.SolveDuration)

	m.CacheRequests = m.NewCounterVec(prometheus.CounterOpts{
		Name: "simplex_cache_requests_total",
		Help: "Result cache lookups, by result",
	}, []string{"result"})

	m.SolverOptions = m.NewGaugeVec(prometheus.GaugeOpts{
		Name: "simplex_solver_option",
		Help: "Solver options currently in effect",
	}, []string{"option"})

	slog.Info("unified metrics registry initialized", "service", serviceName)
	return m
}

// NewCounterVec 创建并注册一个新的计数器指标。
func (m *Metrics) NewCounterVec(opts prometheus.CounterOpts, labelNames []string) *prometheus.CounterVec {
	cv := prometheus.NewCounterVec(opts, labelNames)
	m.registry.MustRegister(cv)
	return cv
}

// NewGaugeVec 创建并注册一个新的仪表盘指标。
func (m *Metrics) NewGaugeVec(opts prometheus.GaugeOpts, labelNames []string) *prometheus.GaugeVec {
	gv := prometheus.NewGaugeVec(opts, labelNames)
	m.registry.MustRegister(gv)
	return gv
}

// NewHistogramVec 创建并注册一个新的直方图指标。
func (m *Metrics) NewHistogramVec(opts prometheus.HistogramOpts, labelNames []string) *prometheus.HistogramVec {
	hv := prometheus.NewHistogramVec(opts, labelNames)
	m.registry.MustRegister(hv)
	return hv
}

// ObserveSolve 记录一次求解的结果状态、主元次数与耗时。
func (m *Metrics) ObserveSolve(status string, pivots int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SolvesTotal.WithLabelValues(status).Inc()
	m.SolvePivots.Observe(float64(pivots))
	m.SolveDuration.Observe(elapsed.Seconds())
}

// ObserveCache 记录一次缓存命中或未命中。
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheRequests.WithLabelValues(result).Inc()
}

// Registry 返回内部注册表，便于测试读取指标。
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 返回用于暴露指标的 HTTP 处理器。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
