package metrics

import (
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveSolve(t *testing.T) {
	m := NewMetrics("test")

	m.ObserveSolve("OPTIMAL", 3, 2*time.Millisecond)
	m.ObserveSolve("OPTIMAL", 5, time.Millisecond)
	m.ObserveSolve("INFEASIBLE", 1, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SolvesTotal.WithLabelValues("OPTIMAL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SolvesTotal.WithLabelValues("INFEASIBLE")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.SolvePivots))
}

func TestObserveCacheAndNil(t *testing.T) {
	m := NewMetrics("test")
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues("miss")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() {
		nilMetrics.ObserveSolve("OPTIMAL", 1, time.Second)
		nilMetrics.ObserveCache(true)
		nilMetrics.RegisterBuildInfo("x", "y")
		nilMetrics.SetSolverOptions(1e-9, 50, 0)
	})
}

func TestHandlerExposesBuildInfo(t *testing.T) {
	m := NewMetrics("test")
	m.RegisterBuildInfo("lpsolve", "")
	m.RegisterBuildInfo("again", "ignored")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `build_info{go_version="`+runtime.Version()+`",service="lpsolve",version="unknown"} 1`)
	assert.NotContains(t, rec.Body.String(), `service="again"`)
}

func TestSetSolverOptions(t *testing.T) {
	m := NewMetrics("test")
	m.SetSolverOptions(1e-9, 50, 0)
	m.SetSolverOptions(1e-8, 20, 7)

	assert.InDelta(t, 1e-8, testutil.ToFloat64(m.SolverOptions.WithLabelValues("epsilon")), 1e-20)
	assert.Equal(t, 20.0, testutil.ToFloat64(m.SolverOptions.WithLabelValues("pivot_factor")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.SolverOptions.WithLabelValues("max_pivots")))
}
