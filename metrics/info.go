package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
)

// RegisterBuildInfo 注册常量 1 的构建信息指标，只有第一次调用生效。
func (m *Metrics) RegisterBuildInfo(serviceName, version string) {
	if m == nil || m.BuildInfo != nil {
		return
	}
	if version == "" {
		version = "unknown"
	}

	m.BuildInfo = m.NewGaugeVec(prometheus.GaugeOpts{
		Name: "build_info",
		Help: "Build information of the solver service",
	}, []string{"service", "version", "go_version"})
	m.BuildInfo.WithLabelValues(serviceName, version, runtime.Version()).Set(1)
}

// SetSolverOptions 记录当前生效的求解参数，配置热更新后再次调用覆盖旧值。
func (m *Metrics) SetSolverOptions(epsilon float64, pivotFactor, maxPivots int) {
	if m == nil {
		return
	}
	m.SolverOptions.WithLabelValues("epsilon").Set(epsilon)
	m.SolverOptions.WithLabelValues("pivot_factor").Set(float64(pivotFactor))
	m.SolverOptions.WithLabelValues("max_pivots").Set(float64(maxPivots))
}
