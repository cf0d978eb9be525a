package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/wyfcoding/simplex/cache"
	"github.com/wyfcoding/simplex/config"
	"github.com/wyfcoding/simplex/lpfile"
	"github.com/wyfcoding/simplex/metrics"
	"github.com/wyfcoding/simplex/simplex"
	"github.com/wyfcoding/simplex/xerrors"
)

const delta = 1e-6

func referenceDoc() *lpfile.Document {
	return &lpfile.Document{
		Name:        "reference",
		Sense:       "max",
		Objective:   []float64{3, 5},
		Constraints: [][]float64{{1, 0}, {0, 2}, {3, 2}},
		RHS:         []float64{4, 12, 18},
		Variables:   []string{"doors", "windows"},
	}
}

func infeasibleDoc() *lpfile.Document {
	return &lpfile.Document{
		Name:        "budget",
		Sense:       "min",
		Objective:   []float64{2, 3},
		Constraints: [][]float64{{500, 800}, {2, 3}},
		RHS:         []float64{5000, 10},
		Relations:   []string{"ge", "le"},
	}
}

func newTestService(t *testing.T, mutate func(*config.Config)) (*Service, *metrics.Metrics) {
	t.Helper()
	conf := config.Default()
	if mutate != nil {
		mutate(conf)
	}

	c, err := cache.NewBigCache(config.CacheConfig{Enabled: true, TTL: time.Minute, MaxMB: 8, Shards: 16})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	m := metrics.NewMetrics("simplex-test")
	return New(conf.Solver, conf.Service, WithCache(c, conf.Cache.TTL), WithMetrics(m)), m
}

func TestSolveOptimalAndCached(t *testing.T) {
	svc, m := newTestService(t, nil)
	ctx := context.Background()

	first, err := svc.Solve(ctx, referenceDoc())
	require.NoError(t, err)
	assert.Equal(t, simplex.Optimal, first.Status)
	require.NotNil(t, first.Objective)
	assert.InDelta(t, 36, *first.Objective, delta)
	assert.InDeltaSlice(t, []float64{2, 6}, first.Values, delta)
	assert.Equal(t, 2, first.Pivots)
	assert.False(t, first.Cached)
	assert.Equal(t, "reference", first.Name)
	assert.Equal(t, []string{"doors", "windows"}, first.Variables)
	assert.Regexp(t, `^S\d+$`, first.ID)

	second, err := svc.Solve(ctx, referenceDoc())
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Status, second.Status)
	assert.InDelta(t, *first.Objective, *second.Objective, delta)
	assert.Equal(t, first.Pivots, second.Pivots)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SolvesTotal.WithLabelValues("OPTIMAL")))
}

func TestSolveInfeasibleIsResult(t *testing.T) {
	svc, m := newTestService(t, nil)

	res, err := svc.Solve(context.Background(), infeasibleDoc())
	require.NoError(t, err)
	assert.Equal(t, simplex.Infeasible, res.Status)
	assert.Nil(t, res.Objective)
	assert.Nil(t, res.Values)

	again, err := svc.Solve(context.Background(), infeasibleDoc())
	require.NoError(t, err)
	assert.True(t, again.Cached, "definitive outcomes are cached")
	assert.Equal(t, simplex.Infeasible, again.Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SolvesTotal.WithLabelValues("INFEASIBLE")))
}

func TestSolveCycleLimitNotCached(t *testing.T) {
	svc, _ := newTestService(t, func(c *config.Config) { c.Solver.MaxPivots = 1 })

	res, err := svc.Solve(context.Background(), referenceDoc())
	require.NoError(t, err)
	assert.Equal(t, simplex.CycleLimit, res.Status)
	assert.Nil(t, res.Objective)

	again, err := svc.Solve(context.Background(), referenceDoc())
	require.NoError(t, err)
	assert.False(t, again.Cached)
}

func TestSolveValidation(t *testing.T) {
	svc, _ := newTestService(t, func(c *config.Config) { c.Service.MaxVariables = 3 })
	ctx := context.Background()

	ragged := referenceDoc()
	ragged.Constraints[1] = []float64{1}
	_, err := svc.Solve(ctx, ragged)
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.ErrRaggedRow)

	relation := referenceDoc()
	relation.Relations = []string{"<=", "<>", "<="}
	_, err = svc.Solve(ctx, relation)
	assert.ErrorIs(t, err, xerrors.ErrUnknownRelation)

	wide := &lpfile.Document{
		Objective:   []float64{1, 1, 1, 1},
		Constraints: [][]float64{{1, 1, 1, 1}},
		RHS:         []float64{1},
	}
	_, err = svc.Solve(ctx, wide)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.True(t, xerrors.IsType(err, xerrors.ErrInvalidArg))
}

func TestSolveCanceled(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Solve(ctx, referenceDoc())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCanceled)

	e, ok := xerrors.FromError(err)
	require.True(t, ok)
	assert.Equal(t, 504, e.HTTPStatus())
}

func TestReloadAppliesToNextSolve(t *testing.T) {
	svc, m := newTestService(t, nil)
	ctx := context.Background()

	res, err := svc.Solve(ctx, referenceDoc())
	require.NoError(t, err)
	require.Equal(t, simplex.Optimal, res.Status)
	assert.Equal(t, 50.0, testutil.ToFloat64(m.SolverOptions.WithLabelValues("pivot_factor")))

	conf := config.Default()
	conf.Solver.MaxPivots = 1
	svc.Reload(conf)

	res, err = svc.Solve(ctx, referenceDoc())
	require.NoError(t, err)
	assert.Equal(t, simplex.CycleLimit, res.Status, "solver options are part of the cache key")
	assert.False(t, res.Cached)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SolverOptions.WithLabelValues("max_pivots")))
}

func TestCacheKey(t *testing.T) {
	cfg := config.Default().Solver
	a, err := referenceDoc().Problem()
	require.NoError(t, err)
	b, err := referenceDoc().Problem()
	require.NoError(t, err)
	assert.Equal(t, cacheKey(a, cfg), cacheKey(b, cfg))
	assert.Len(t, cacheKey(a, cfg), 64)

	// 关系符缺省与显式 LE 等价
	explicit := referenceDoc()
	explicit.Relations = []string{"<=", "le", "≤"}
	c, err := explicit.Problem()
	require.NoError(t, err)
	assert.Equal(t, cacheKey(a, cfg), cacheKey(c, cfg))

	bounded := referenceDoc()
	bounded.Bounds = []lpfile.Bound{{Name: "doors", Upper: 1}}
	d, err := bounded.Problem()
	require.NoError(t, err)
	assert.NotEqual(t, cacheKey(a, cfg), cacheKey(d, cfg))

	minimize := referenceDoc()
	minimize.Sense = "min"
	e, err := minimize.Problem()
	require.NoError(t, err)
	assert.NotEqual(t, cacheKey(a, cfg), cacheKey(e, cfg))

	cfg.Epsilon = 1e-7
	assert.NotEqual(t, cacheKey(a, config.Default().Solver), cacheKey(a, cfg))
}

func TestSolveWithoutCacheOrMetrics(t *testing.T) {
	conf := config.Default()
	svc := New(conf.Solver, conf.Service)

	for range 2 {
		res, err := svc.Solve(context.Background(), referenceDoc())
		require.NoError(t, err)
		assert.False(t, res.Cached)
		assert.Equal(t, simplex.Optimal, res.Status)
	}
}

func TestSolveWithTrace(t *testing.T) {
	svc, _ := newTestService(t, func(c *config.Config) { c.Solver.Trace = true })

	res, err := svc.Solve(context.Background(), referenceDoc())
	require.NoError(t, err)
	assert.Equal(t, simplex.Optimal, res.Status)
}

func TestSolveRecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	svc, _ := newTestService(t, nil)
	res, err := svc.Solve(context.Background(), referenceDoc())
	require.NoError(t, err)
	assert.Len(t, res.TraceID, 32)

	_, err = svc.Solve(context.Background(), &lpfile.Document{})
	require.Error(t, err)

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "simplex.Solve", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("solve.id", res.ID))
	assert.Contains(t, ended[0].Attributes(), attribute.String("solve.status", "OPTIMAL"))
	assert.Contains(t, ended[0].Attributes(), attribute.Int("solve.pivots", 2))
	assert.Equal(t, codes.Error, ended[1].Status().Code)
	assert.Contains(t, ended[1].Attributes(), attribute.Int("error.code", xerrors.ErrEmptyObjective.Code))
}
