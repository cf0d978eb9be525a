package simplex

import (
	"math"
	"strings"

	"github.com/wyfcoding/simplex/xerrors"
)

// Relation 约束行的关系符。
type Relation int

const (
	LE Relation = iota // a·x <= b
	GE                 // a·x >= b
	EQ                 // a·x  = b
)

func (r Relation) String() string {
	switch r {
	case LE:
		return "<="
	case GE:
		return ">="
	case EQ:
		return "="
	default:
		return "?"
	}
}

// flip 右端项取负时关系符随之翻转，EQ 保持不变。
func (r Relation) flip() Relation {
	switch r {
	case LE:
		return GE
	case GE:
		return LE
	default:
		return r
	}
}

func (r Relation) valid() bool {
	return r >= LE && r <= EQ
}

// ParseRelation 解析关系符，支持 <=、>=、=、≤、≥ 以及 le/ge/eq 写法（大小写不敏感）。
func ParseRelation(s string) (Relation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "<=", "≤", "le", "leq":
		return LE, nil
	case ">=", "≥", "ge", "geq":
		return GE, nil
	case "=", "==", "eq":
		return EQ, nil
	default:
		return LE, xerrors.ErrUnknownRelation.Detailf("relation %q", s)
	}
}

// MarshalText 实现 encoding.TextMarshaler。
func (r Relation) MarshalText() ([]byte, error) {
	if !r.valid() {
		return nil, xerrors.ErrUnknownRelation.Detailf("relation %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler。
func (r *Relation) UnmarshalText(text []byte) error {
	parsed, err := ParseRelation(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Sense 优化方向。引擎内部始终求最大值，Minimize 只在 Solver.Solve 的边界处换号一次。
type Sense int

const (
	Maximize Sense = iota
	Minimize
)

func (s Sense) String() string {
	if s == Minimize {
		return "min"
	}
	return "max"
}

// ParseSense 解析优化方向，空串视为 max。
func ParseSense(s string) (Sense, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "max", "maximize":
		return Maximize, nil
	case "min", "minimize":
		return Minimize, nil
	default:
		return Maximize, xerrors.ErrUnknownSense.Detailf("sense %q", s)
	}
}

// MarshalText 实现 encoding.TextMarshaler。
func (s Sense) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler。
func (s *Sense) UnmarshalText(text []byte) error {
	parsed, err := ParseSense(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Problem 描述一个线性规划：optimize cᵀx, s.t. A x {<=,>=,=} b, x >= 0。
// Problem 只是数据，求解过程不会修改它。
type Problem struct {
	Sense       Sense
	Objective   []float64   // c，长度 n
	Constraints [][]float64 // A，m 行，每行长度 n
	RHS         []float64   // b，长度 m
	Relations   []Relation  // 长度 m；为 nil 时全部视为 LE
	// UpperBounds 可选的变量上界，长度 n，math.Inf(1) 表示无上界。
	// 上界不走专门的快速路径，而是被编码为额外的 LE 行 x_i <= ub_i。
	UpperBounds []float64
}

// Relation 返回第 i 行的关系符。
func (p *Problem) Relation(i int) Relation {
	if len(p.Relations) == 0 {
		return LE
	}
	return p.Relations[i]
}

// Validate 在任何主元运算之前检查问题的结构合法性。
func (p *Problem) Validate() error {
	n := len(p.Objective)
	m := len(p.Constraints)

	if n == 0 {
		return xerrors.ErrEmptyObjective.Detailf("objective has no coefficients")
	}
	if p.Sense != Maximize && p.Sense != Minimize {
		return xerrors.ErrUnknownSense.Detailf("sense %d", int(p.Sense))
	}
	for j, v := range p.Objective {
		if !finite(v) {
			return xerrors.ErrNonFinite.Detailf("objective[%d] = %v", j, v).WithContext("column", j)
		}
	}
	if len(p.RHS) != m {
		return xerrors.ErrDimMismatchBounds.Detailf("len(rhs) = %d, rows = %d", len(p.RHS), m)
	}
	if len(p.Relations) != 0 && len(p.Relations) != m {
		return xerrors.ErrRelationCount.Detailf("len(relations) = %d, rows = %d", len(p.Relations), m)
	}

	for i, row := range p.Constraints {
		if len(row) != n {
			return xerrors.ErrRaggedRow.Detailf("row %d has %d entries, want %d", i, len(row), n).WithContext("row", i)
		}
		for j, v := range row {
			if !finite(v) {
				return xerrors.ErrNonFinite.Detailf("constraints[%d][%d] = %v", i, j, v).
					WithContext("row", i).WithContext("column", j)
			}
		}
		if !finite(p.RHS[i]) {
			return xerrors.ErrNonFinite.Detailf("rhs[%d] = %v", i, p.RHS[i]).WithContext("row", i)
		}
		if r := p.Relation(i); !r.valid() {
			return xerrors.ErrUnknownRelation.Detailf("row %d relation %d", i, int(r)).WithContext("row", i)
		}
	}

	if len(p.UpperBounds) != 0 && len(p.UpperBounds) != n {
		return xerrors.ErrUpperBoundCount.Detailf("len(upper_bounds) = %d, variables = %d", len(p.UpperBounds), n)
	}
	for j, ub := range p.UpperBounds {
		if math.IsNaN(ub) || math.IsInf(ub, -1) {
			return xerrors.ErrNonFinite.Detailf("upper_bounds[%d] = %v", j, ub).WithContext("column", j)
		}
	}

	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
