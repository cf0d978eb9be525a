package simplex

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// pivot 以 (r, c) 为主元执行 Gauss-Jordan 消元：主元行除以主元，
// 其余各行（含目标行）减去主元行的相应倍数，使第 c 列成为第 r 行的单位列。
func (t *tableau) pivot(r, c int) {
	pr := t.row(r)
	floats.Scale(1/pr[c], pr)
	pr[c] = 1

	for i := 0; i <= t.rows; i++ {
		if i == r {
			continue
		}
		ri := t.row(i)
		if f := ri[c]; f != 0 {
			floats.AddScaled(ri, -f, pr)
			ri[c] = 0
		}
	}

	t.basis[r] = c
}

// enteringColumn 按 Dantzig 规则选择入基列：目标行中最负且小于 -eps 的系数，
// 并列时取列号最小者。返回 -1 表示已达最优。
func (t *tableau) enteringColumn(eps float64) int {
	obj := t.objective()
	col := -1
	best := -eps
	for j := range t.cols {
		if obj[j] < best {
			best = obj[j]
			col = j
		}
	}
	return col
}

// leavingRow 最小比值检验：在入基列系数大于 eps 的行中取 rhs/系数 最小者，
// 差距在 eps 以内视为并列，取行号最小者。返回 -1 表示该列方向无界。
func (t *tableau) leavingRow(c int, eps float64) (int, float64) {
	row := -1
	best := math.Inf(1)
	for i := range t.rows {
		a := t.data.At(i, c)
		if a <= eps {
			continue
		}
		ratio := t.rhs(i) / a
		if ratio < best-eps {
			best = ratio
			row = i
		}
	}
	return row, best
}

// canonicalize 将目标行相对当前基消元，使基变量列上的约化成本为 0。
func (t *tableau) canonicalize() {
	obj := t.objective()
	for i, b := range t.basis {
		if f := obj[b]; f != 0 {
			floats.AddScaled(obj, -f, t.row(i))
			obj[b] = 0
		}
	}
}
