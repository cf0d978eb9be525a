package lpfile

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/simplex/simplex"
)

// Precision 报告中数值保留的小数位数。
const Precision = 6

// Render 写出可读的求解报告：先写状态；只有 OPTIMAL 时才写目标值与各变量取值。
func Render(w io.Writer, doc *Document, sol *simplex.Solution) error {
	ew := &errWriter{w: w}

	if doc.Name != "" {
		ew.printf("problem: %s\n", doc.Name)
	}
	ew.printf("status: %s\n", sol.Status)
	if sol.Status != simplex.Optimal {
		return ew.err
	}

	ew.printf("objective: %s\n", Format6(sol.Objective))
	ew.printf("pivots: %d\n", sol.Pivots)
	for j, v := range sol.Values {
		ew.printf("%s = %s\n", doc.VariableName(j), Format6(v))
	}
	return ew.err
}

// Format6 按 Precision 四舍五入并去掉多余的零。
func Format6(v float64) string {
	return decimal.NewFromFloat(v).Round(Precision).String()
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
