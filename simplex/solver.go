// Package simplex 实现两阶段稠密单纯形表法，求解 optimize cᵀx s.t. A x {<=,>=,=} b, x >= 0。
//
// 第一阶段通过人工变量建立基可行解或证明不可行，第二阶段在继承的基上优化真实目标或证明无界。
// 入基列采用 Dantzig 规则，入基与出基的并列均取最小下标；两阶段共享固定的主元预算，
// 保证退化输入下也能终止。引擎同步、无 I/O、不打印，每次调用独占自己的表与基。
package simplex

import (
	"math"
)

const (
	// DefaultEpsilon 主元选择、终止判断与单位列判断统一使用的容差。
	DefaultEpsilon = 1e-9
	// DefaultPivotFactor 主元预算系数，预算为 factor * (m + n)。
	DefaultPivotFactor = 50
)

// Iteration 一次主元运算的诊断信息。
type Iteration struct {
	Phase     Phase
	Pivot     int     // 两阶段累计的主元序号，从 1 开始
	Entering  int     // 入基列
	Leaving   int     // 出基行
	Ratio     float64 // 比值检验的最小比值；换出人工变量时为 0
	Objective float64 // 主元后目标行的右端项（内部最大化口径）
}

// Tracer 可注入的诊断回调，默认不设置。
type Tracer func(Iteration)

type options struct {
	epsilon     float64
	pivotFactor int
	maxPivots   int
	tracer      Tracer
}

// Option 定义求解器配置选项。
type Option func(*options)

// WithEpsilon 设置数值容差，非正值被忽略。
func WithEpsilon(eps float64) Option {
	return func(o *options) {
		if eps > 0 {
			o.epsilon = eps
		}
	}
}

// WithPivotFactor 设置主元预算系数，非正值被忽略。
func WithPivotFactor(factor int) Option {
	return func(o *options) {
		if factor > 0 {
			o.pivotFactor = factor
		}
	}
}

// WithMaxPivots 直接指定主元预算上限，优先于 WithPivotFactor；0 表示按系数计算。
func WithMaxPivots(limit int) Option {
	return func(o *options) {
		if limit >= 0 {
			o.maxPivots = limit
		}
	}
}

// WithTracer 注入每次主元后的诊断回调。
func WithTracer(tracer Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// Solver 单纯形求解器。它只持有不可变的选项，可被多个 goroutine 并发使用。
type Solver struct {
	opts options
}

// New 创建求解器。
func New(opts ...Option) *Solver {
	o := options{
		epsilon:     DefaultEpsilon,
		pivotFactor: DefaultPivotFactor,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Solver{opts: o}
}

// Epsilon 返回求解器使用的数值容差。
func (s *Solver) Epsilon() float64 {
	return s.opts.epsilon
}

// Solve 求解问题。结构性错误（维度不符等）在任何主元运算前以错误返回；
// 不可行、无界与预算耗尽属于正常结果，通过 Solution.Status 返回。
// 唯一的 error 结果还包括第一阶段内部不变量被破坏。
func (s *Solver) Solve(p *Problem) (*Solution, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	// 优化方向只在此处换号：进入时对 c 取负，退出时对目标值取负
	c := p.Objective
	if p.Sense == Minimize {
		c = make([]float64, len(p.Objective))
		for j, v := range p.Objective {
			c[j] = -v
		}
	}

	t := newTableau(p)
	r := &run{
		t:      t,
		eps:    s.opts.epsilon,
		trace:  s.opts.tracer,
		budget: s.budget(t.rows, t.structural),
	}

	status, err := r.phaseOne()
	if err != nil {
		return nil, err
	}
	if status == Optimal {
		status, err = r.phaseTwo(c)
		if err != nil {
			return nil, err
		}
	}
	if status != Optimal {
		return &Solution{Status: status, Pivots: r.pivots}, nil
	}

	objective := t.rhs(t.rows)
	if p.Sense == Minimize {
		objective = -objective
	}
	if math.Abs(objective) <= s.opts.epsilon {
		objective = 0
	}

	return &Solution{
		Status:    Optimal,
		Values:    t.extract(s.opts.epsilon),
		Objective: objective,
		Pivots:    r.pivots,
	}, nil
}

func (s *Solver) budget(m, n int) int {
	if s.opts.maxPivots > 0 {
		return s.opts.maxPivots
	}
	return s.opts.pivotFactor * (m + n)
}

// Solve 使用默认选项求解问题的便捷函数。
func Solve(p *Problem, opts ...Option) (*Solution, error) {
	return New(opts...).Solve(p)
}
