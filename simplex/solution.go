package simplex

import (
	"math"
	"strings"

	"github.com/wyfcoding/simplex/xerrors"
)

// Status 求解结果状态。除 Optimal 外均为正常的返回值而非故障。
type Status int

const (
	Optimal    Status = iota // 已找到最优解
	Infeasible               // 不存在满足全部约束的非负解
	Unbounded                // 目标可无限改进
	CycleLimit               // 主元预算耗尽，结果不确定
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "OPTIMAL"
	case Infeasible:
		return "INFEASIBLE"
	case Unbounded:
		return "UNBOUNDED"
	case CycleLimit:
		return "CYCLE_LIMIT"
	default:
		return "UNKNOWN"
	}
}

// MarshalText 实现 encoding.TextMarshaler。
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler。
func (s *Status) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "OPTIMAL":
		*s = Optimal
	case "INFEASIBLE":
		*s = Infeasible
	case "UNBOUNDED":
		*s = Unbounded
	case "CYCLE_LIMIT":
		*s = CycleLimit
	default:
		return xerrors.InvalidArg("unknown status").WithDetail("status %q", text)
	}
	return nil
}

// Definitive 结果是否为确定性结论（CycleLimit 不是）。
func (s Status) Definitive() bool {
	return s == Optimal || s == Infeasible || s == Unbounded
}

// Solution 单次求解的结果，构造后不再修改。
// Status 不是 Optimal 时 Values 为 nil、Objective 为 0，不应向调用方报告。
type Solution struct {
	Status    Status
	Values    []float64 // 结构变量取值，长度 n
	Objective float64   // 按调用方的 Sense 报告的目标值
	Pivots    int       // 两阶段合计主元次数
}

// Err 将失败状态映射为对应的类型化错误，Optimal 返回 nil。
func (s *Solution) Err() error {
	switch s.Status {
	case Optimal:
		return nil
	case Infeasible:
		return xerrors.ErrInfeasibleProblem.Detailf("after %d pivots", s.Pivots)
	case Unbounded:
		return xerrors.ErrUnboundedProblem.Detailf("after %d pivots", s.Pivots)
	case CycleLimit:
		return xerrors.ErrCycleLimit.Detailf("after %d pivots", s.Pivots)
	default:
		return xerrors.Internal("unknown solve status", nil).WithDetail("status %d", int(s.Status))
	}
}

// extract 读取结构变量取值：基变量取所在行的右端项，非基变量为 0，绝对值小于 eps 的结果归零。
func (t *tableau) extract(eps float64) []float64 {
	values := make([]float64, t.structural)
	for j := range t.structural {
		r, ok := t.basicRow(j, eps)
		if !ok || t.basis[r] != j {
			continue
		}
		if v := t.rhs(r); math.Abs(v) > eps {
			values[j] = v
		}
	}
	return values
}
