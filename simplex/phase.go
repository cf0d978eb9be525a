package simplex

import (
	"math"

	"github.com/wyfcoding/simplex/xerrors"
)

// Phase 单纯形求解所处的阶段。
type Phase int

const (
	PhaseOne Phase = iota + 1 // 可行性阶段：最小化人工变量之和
	PhaseTwo                  // 优化阶段：原目标函数
)

func (p Phase) String() string {
	switch p {
	case PhaseOne:
		return "phase1"
	case PhaseTwo:
		return "phase2"
	default:
		return "unknown"
	}
}

// run 单次求解的可变状态，只属于当前 Solve 调用。
type run struct {
	t      *tableau
	eps    float64
	trace  Tracer
	phase  Phase
	budget int // 两阶段共享的主元预算
	pivots int
}

// iterate 主循环：选入基列、比值检验、主元消元，直到最优、无界或预算耗尽。
func (r *run) iterate() (Status, error) {
	t := r.t
	for {
		col := t.enteringColumn(r.eps)
		if col < 0 {
			return Optimal, nil
		}

		row, ratio := t.leavingRow(col, r.eps)
		if row < 0 {
			if r.phase == PhaseOne {
				return Optimal, xerrors.ErrPhaseOneUnbounded.Detailf("column %d has no positive entry", col).
					WithContext("column", col)
			}
			return Unbounded, nil
		}

		if r.pivots >= r.budget {
			return CycleLimit, nil
		}

		r.step(row, col, ratio)
	}
}

func (r *run) step(row, col int, ratio float64) {
	r.t.pivot(row, col)
	r.pivots++
	if r.trace != nil {
		r.trace(Iteration{
			Phase:     r.phase,
			Pivot:     r.pivots,
			Entering:  col,
			Leaving:   row,
			Ratio:     ratio,
			Objective: r.t.rhs(r.t.rows),
		})
	}
}

// phaseOne 在存在人工变量时寻找初始基可行解。
// 第一阶段最优值的绝对值超过 eps 即不可行。
// 成功返回 Optimal，表中的人工变量列已被删除；否则返回 Infeasible 或 CycleLimit。
func (r *run) phaseOne() (Status, error) {
	t := r.t
	if !t.hasArtificials() {
		return Optimal, nil
	}
	r.phase = PhaseOne

	// max -Σa 的目标行即人工变量列上的 +1
	obj := t.objective()
	clear(obj)
	for j := t.artStart; j < t.cols; j++ {
		obj[j] = 1
	}
	t.canonicalize()

	status, err := r.iterate()
	if err != nil || status != Optimal {
		return status, err
	}

	if math.Abs(t.rhs(t.rows)) > r.eps {
		return Infeasible, nil
	}

	t.dropArtificials(r.driveOut())
	return Optimal, nil
}

// driveOut 把仍以零值留在基中的人工变量换出：在该行选系数绝对值最大（且大于 eps）的非人工列做主元，相同时取列号最小者。
// 找不到这样的列说明该行线性冗余，返回的标记用于删除这些行。这些主元不消耗预算。
func (r *run) driveOut() []bool {
	t := r.t
	redundant := make([]bool, t.rows)
	for i := range t.rows {
		if t.basis[i] < t.artStart {
			continue
		}
		row := t.row(i)
		col, best := -1, r.eps
		for j := range t.artStart {
			if a := math.Abs(row[j]); a > best {
				col, best = j, a
			}
		}
		if col < 0 {
			redundant[i] = true
			continue
		}
		r.step(i, col, 0)
		r.budget++
	}
	return redundant
}

// phaseTwo 装入真实目标（内部最大化，目标行为 -c），相对继承的基规范化后迭代。
func (r *run) phaseTwo(c []float64) (Status, error) {
	t := r.t
	r.phase = PhaseTwo

	obj := t.objective()
	clear(obj)
	for j, v := range c {
		obj[j] = -v
	}
	t.canonicalize()

	return r.iterate()
}
