package simplex

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// tableau 稠密单纯形表。
//
// 列布局：结构变量 [0, n)，随后按行序排列的松弛/剩余变量，再随后按行序排列的人工变量，
// 最后一列为右端项。最后一行为目标行。
// 规范形不变量：每个约束行 i 都有一个基变量列 basis[i]，该列在第 i 行为 1、在其余约束行为 0，
// 目标行在所有基变量列上的系数为 0。
type tableau struct {
	data       *mat.Dense
	rows       int // 约束行数，不含目标行
	cols       int // 变量列数，不含右端项
	structural int // 结构变量个数 n
	artStart   int // 第一列人工变量；没有人工变量时等于 cols
	basis      []int
}

// newTableau 由已校验的问题构建初始单纯形表。
// 右端项为负的行整体取负并翻转关系符，保证初始基可行；上界被追加为 LE 行。
func newTableau(p *Problem) *tableau {
	n := len(p.Objective)

	type row struct {
		coef []float64
		unit int // 上界行：只在该列为 1
		rhs  float64
		rel  Relation
	}

	rows := make([]row, 0, len(p.Constraints)+len(p.UpperBounds))
	for i, a := range p.Constraints {
		rows = append(rows, row{coef: a, unit: -1, rhs: p.RHS[i], rel: p.Relation(i)})
	}
	for j, ub := range p.UpperBounds {
		if math.IsInf(ub, 1) {
			continue
		}
		rows = append(rows, row{unit: j, rhs: ub, rel: LE})
	}

	var slacks, artificials int
	for i := range rows {
		if rows[i].rhs < 0 {
			rows[i].rel = rows[i].rel.flip()
		}
		switch rows[i].rel {
		case LE:
			slacks++
		case GE:
			slacks++
			artificials++
		case EQ:
			artificials++
		}
	}

	m := len(rows)
	cols := n + slacks + artificials
	t := &tableau{
		data:       mat.NewDense(m+1, cols+1, nil),
		rows:       m,
		cols:       cols,
		structural: n,
		artStart:   n + slacks,
		basis:      make([]int, m),
	}

	slack, art := n, t.artStart
	for i, r := range rows {
		dst := t.data.RawRowView(i)
		sign := 1.0
		if r.rhs < 0 {
			sign = -1.0
		}
		if r.unit >= 0 {
			dst[r.unit] = sign
		} else {
			for j, v := range r.coef {
				if v != 0 {
					dst[j] = sign * v
				}
			}
		}
		dst[cols] = sign * r.rhs

		switch r.rel {
		case LE:
			dst[slack] = 1
			t.basis[i] = slack
			slack++
		case GE:
			dst[slack] = -1
			slack++
			dst[art] = 1
			t.basis[i] = art
			art++
		case EQ:
			dst[art] = 1
			t.basis[i] = art
			art++
		}
	}

	return t
}

// row 返回第 i 行（含右端项）的底层切片，修改会直接作用于单纯形表。
func (t *tableau) row(i int) []float64 {
	return t.data.RawRowView(i)
}

// objective 返回目标行。
func (t *tableau) objective() []float64 {
	return t.data.RawRowView(t.rows)
}

// rhs 返回第 i 行的右端项；i == rows 时为目标行的当前值。
func (t *tableau) rhs(i int) float64 {
	return t.data.At(i, t.cols)
}

func (t *tableau) hasArtificials() bool {
	return t.artStart < t.cols
}

// basicRow 用容差判断第 j 列是否为单位基列，是则返回 1 所在的行。
func (t *tableau) basicRow(j int, eps float64) (int, bool) {
	found := -1
	for i := range t.rows {
		v := t.data.At(i, j)
		switch {
		case math.Abs(v-1) <= eps:
			if found >= 0 {
				return -1, false
			}
			found = i
		case math.Abs(v) > eps:
			return -1, false
		}
	}
	return found, found >= 0
}

// canonical 检查规范形不变量是否成立。
func (t *tableau) canonical(eps float64) bool {
	obj := t.objective()
	for i, b := range t.basis {
		r, ok := t.basicRow(b, eps)
		if !ok || r != i || math.Abs(obj[b]) > eps {
			return false
		}
	}
	return true
}

// dropArtificials 删除全部人工变量列以及 redundant 标记的冗余行，目标行清零。
func (t *tableau) dropArtificials(redundant []bool) {
	keep := 0
	for i := range t.rows {
		if !redundant[i] {
			keep++
		}
	}

	cols := t.artStart
	data := mat.NewDense(keep+1, cols+1, nil)
	basis := make([]int, 0, keep)

	k := 0
	for i := range t.rows {
		if redundant[i] {
			continue
		}
		src, dst := t.row(i), data.RawRowView(k)
		copy(dst[:cols], src[:cols])
		dst[cols] = src[t.cols]
		basis = append(basis, t.basis[i])
		k++
	}

	t.data = data
	t.rows = keep
	t.cols = cols
	t.basis = basis
}

func (t *tableau) String() string {
	return fmt.Sprintf("basis=%v\n%v", t.basis, mat.Formatted(t.data, mat.Squeeze()))
}
