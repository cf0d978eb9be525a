// Package service 把单纯形引擎包装为带缓存、指标、追踪与日志的求解服务。
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/wyfcoding/simplex/cache"
	"github.com/wyfcoding/simplex/config"
	"github.com/wyfcoding/simplex/contextx"
	"github.com/wyfcoding/simplex/idgen"
	"github.com/wyfcoding/simplex/logging"
	"github.com/wyfcoding/simplex/lpfile"
	"github.com/wyfcoding/simplex/metrics"
	"github.com/wyfcoding/simplex/simplex"
	"github.com/wyfcoding/simplex/tracing"
	"github.com/wyfcoding/simplex/xerrors"
)

var (
	// ErrTooLarge 问题规模超过服务允许的上限。
	ErrTooLarge = xerrors.New(xerrors.ErrInvalidArg, 400301, "problem too large", "", nil)
	// ErrBatchSize 批量请求为空或超过上限。
	ErrBatchSize = xerrors.New(xerrors.ErrInvalidArg, 400302, "invalid batch size", "", nil)
	// ErrCanceled 求解开始前或进行中请求已取消或超时。
	ErrCanceled = xerrors.New(xerrors.ErrDeadlineExceeded, 504301, "solve canceled", "", nil)
)

// Result 单次求解的对外结果。只有 OPTIMAL 时才携带 Objective 与 Values。
type Result struct {
	ID        string         `json:"id"`
	Name      string         `json:"name,omitempty"`
	Status    simplex.Status `json:"status"`
	Objective *float64       `json:"objective,omitempty"`
	Values    []float64      `json:"values,omitempty"`
	Variables []string       `json:"variables,omitempty"`
	Pivots    int            `json:"pivots"`
	Cached    bool           `json:"cached"`
	Duration  time.Duration  `json:"duration_ns"`
	TraceID   string         `json:"trace_id,omitempty"`
}

// cachedSolution 缓存中保存的确定性结果。
type cachedSolution struct {
	Status    simplex.Status `json:"status"`
	Objective float64        `json:"objective"`
	Values    []float64      `json:"values,omitempty"`
	Pivots    int            `json:"pivots"`
}

// Service 求解服务，可被多个 goroutine 并发使用。
type Service struct {
	mu     sync.RWMutex
	solver config.SolverConfig
	cfg    config.ServiceConfig

	cache   cache.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option 配置 Service 的可选依赖。
type Option func(*Service)

// WithCache 启用结果缓存。
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.ttl = ttl
	}
}

// WithMetrics 记录求解与缓存指标。
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger 指定日志记录器，默认使用 slog.Default()。
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New 创建求解服务。
func New(solver config.SolverConfig, cfg config.ServiceConfig, opts ...Option) *Service {
	s := &Service{solver: solver, cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.metrics.SetSolverOptions(solver.Epsilon, solver.PivotFactor, solver.MaxPivots)
	return s
}

// Reload 热更新求解器与服务参数，之后的请求立即生效。
func (s *Service) Reload(conf *config.Config) {
	s.mu.Lock()
	s.solver = conf.Solver
	s.cfg = conf.Service
	s.mu.Unlock()
	s.metrics.SetSolverOptions(conf.Solver.Epsilon, conf.Solver.PivotFactor, conf.Solver.MaxPivots)
	s.logger.Info("solver options reloaded",
		"epsilon", conf.Solver.Epsilon,
		"pivot_factor", conf.Solver.PivotFactor,
		"max_pivots", conf.Solver.MaxPivots,
		"trace", conf.Solver.Trace,
	)
}

func (s *Service) settings() (config.SolverConfig, config.ServiceConfig) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.solver, s.cfg
}

// Solve 校验并求解一个文档。校验失败返回 InvalidArg 错误；
// 不可行、无界与预算耗尽都作为正常结果返回，其状态原样写入 Result.Status。
func (s *Service) Solve(ctx context.Context, doc *lpfile.Document) (*Result, error) {
	id := idgen.GenSolveID()
	ctx, span := tracing.StartSolve(contextx.WithSolveID(ctx, id), id)
	defer span.End()

	solverCfg, svcCfg := s.settings()

	p, err := doc.Problem()
	if err != nil {
		tracing.SetError(ctx, err)
		return nil, err
	}
	if svcCfg.MaxVariables > 0 && len(p.Objective) > svcCfg.MaxVariables {
		err := ErrTooLarge.Detailf("%d variables, limit %d", len(p.Objective), svcCfg.MaxVariables)
		tracing.SetError(ctx, err)
		return nil, err
	}
	tracing.AddTag(ctx, "lp.rows", len(p.Constraints))
	tracing.AddTag(ctx, "lp.cols", len(p.Objective))

	res := &Result{ID: id, Name: doc.Name, Variables: doc.Variables, TraceID: tracing.GetTraceID(ctx)}
	key := cacheKey(p, solverCfg)

	if cached, ok := s.lookup(ctx, key); ok {
		res.fill(cached.Status, cached.Objective, cached.Values, cached.Pivots)
		res.Cached = true
		tracing.AddTag(ctx, "solve.cached", true)
		return res, nil
	}

	start := time.Now()
	sol, err := s.run(ctx, p, solverCfg)
	res.Duration = time.Since(start)
	if err != nil {
		tracing.SetError(ctx, err)
		s.logger.ErrorContext(ctx, "solve failed", append([]any{"error", err}, contextx.LogArgs(ctx)...)...)
		return nil, err
	}

	s.metrics.ObserveSolve(sol.Status.String(), sol.Pivots, res.Duration)
	tracing.AddTag(ctx, "solve.status", sol.Status)
	tracing.AddTag(ctx, "solve.pivots", sol.Pivots)

	if sol.Status.Definitive() {
		s.store(ctx, key, sol)
	}

	res.fill(sol.Status, sol.Objective, sol.Values, sol.Pivots)
	s.logger.InfoContext(ctx, "lp solved", append([]any{
		"status", sol.Status.String(),
		"pivots", sol.Pivots,
		"rows", len(p.Constraints),
		"cols", len(p.Objective),
		"duration", res.Duration,
	}, contextx.LogArgs(ctx)...)...)

	return res, nil
}

func (r *Result) fill(status simplex.Status, objective float64, values []float64, pivots int) {
	r.Status = status
	r.Pivots = pivots
	if status == simplex.Optimal {
		r.Objective = &objective
		r.Values = values
	}
}

// run 在独立 goroutine 中执行同步的引擎，使请求取消能及时返回；引擎本身受主元预算约束必然结束。
func (s *Service) run(ctx context.Context, p *simplex.Problem, cfg config.SolverConfig) (*simplex.Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrCanceled.Detailf("%v", err)
	}

	opts := []simplex.Option{
		simplex.WithEpsilon(cfg.Epsilon),
		simplex.WithPivotFactor(cfg.PivotFactor),
		simplex.WithMaxPivots(cfg.MaxPivots),
	}
	if cfg.Trace {
		if tracer := logging.SolveTracer(ctx, s.logger); tracer != nil {
			opts = append(opts, simplex.WithTracer(tracer))
		}
	}
	solver := simplex.New(opts...)

	type outcome struct {
		sol *simplex.Solution
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		sol, err := solver.Solve(p)
		done <- outcome{sol, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ErrCanceled.Detailf("%v", ctx.Err())
	case out := <-done:
		if out.err != nil && !xerrors.IsType(out.err, xerrors.ErrInvalidArg) {
			return nil, xerrors.WrapInternal(out.err, "simplex engine failure")
		}
		return out.sol, out.err
	}
}

func (s *Service) lookup(ctx context.Context, key string) (*cachedSolution, bool) {
	if s.cache == nil {
		return nil, false
	}
	var cached cachedSolution
	err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.WarnContext(ctx, "result cache read failed", "error", err)
		}
		s.metrics.ObserveCache(false)
		return nil, false
	}
	s.metrics.ObserveCache(true)
	return &cached, true
}

func (s *Service) store(ctx context.Context, key string, sol *simplex.Solution) {
	if s.cache == nil {
		return
	}
	entry := cachedSolution{Status: sol.Status, Objective: sol.Objective, Values: sol.Values, Pivots: sol.Pivots}
	if err := s.cache.Set(ctx, key, entry, s.ttl); err != nil {
		s.logger.WarnContext(ctx, "result cache write failed", "error", err)
	}
}

// canonicalProblem 用于计算缓存键的规范形式：关系符逐行展开，无上界记为 null。
type canonicalProblem struct {
	Epsilon     float64     `json:"eps"`
	PivotFactor int         `json:"pf"`
	MaxPivots   int         `json:"mp"`
	Sense       string      `json:"sense"`
	Objective   []float64   `json:"c"`
	Constraints [][]float64 `json:"a"`
	RHS         []float64   `json:"b"`
	Relations   []string    `json:"rel"`
	UpperBounds []*float64  `json:"ub,omitempty"`
}

// cacheKey 计算问题与求解参数的规范 JSON 的 SHA-256。
func cacheKey(p *simplex.Problem, cfg config.SolverConfig) string {
	c := canonicalProblem{
		Epsilon:     cfg.Epsilon,
		PivotFactor: cfg.PivotFactor,
		MaxPivots:   cfg.MaxPivots,
		Sense:       p.Sense.String(),
		Objective:   p.Objective,
		Constraints: p.Constraints,
		RHS:         p.RHS,
		Relations:   make([]string, len(p.Constraints)),
	}
	for i := range p.Constraints {
		c.Relations[i] = p.Relation(i).String()
	}
	for _, ub := range p.UpperBounds {
		if math.IsInf(ub, 1) {
			c.UpperBounds = append(c.UpperBounds, nil)
			continue
		}
		c.UpperBounds = append(c.UpperBounds, &ub)
	}

	data, err := json.Marshal(c)
	if err != nil {
		// 已校验的问题只含有限值，不会走到这里
		return "unhashable:" + strconv.Itoa(len(p.Objective))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
