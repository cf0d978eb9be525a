// Command lpsolve 求解线性规划文档，或以 HTTP 服务的形式提供求解接口。
//
//	lpsolve solve [-sense min|max] [-trace] [-max-pivots N] FILE
//	lpsolve serve [-conf configs/config.toml]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/wyfcoding/simplex/logging"
	"github.com/wyfcoding/simplex/lpfile"
	"github.com/wyfcoding/simplex/simplex"
)

const (
	exitOptimal   = 0
	exitError     = 1
	exitNoOptimum = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitError
	}

	switch args[0] {
	case "solve":
		return solveCmd(args[1:], stdout, stderr)
	case "serve":
		return serveCmd(args[1:], stderr)
	case "-h", "-help", "--help", "help":
		usage(stdout)
		return exitOptimal
	default:
		fmt.Fprintf(stderr, "lpsolve: unknown command %q\n", args[0])
		usage(stderr)
		return exitError
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage:")
	fmt.Fprintln(w, "  lpsolve solve [-sense min|max] [-trace] [-max-pivots N] FILE")
	fmt.Fprintln(w, "  lpsolve serve [-conf configs/config.toml]")
}

func solveCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("solve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	sense := fs.String("sense", "", "override the document's objective sense (max|min)")
	trace := fs.Bool("trace", false, "log every pivot to stderr")
	maxPivots := fs.Int("max-pivots", 0, "pivot budget shared by both phases, 0 derives it from the problem size")
	if err := fs.Parse(args); err != nil {
		return exitError
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "lpsolve solve: exactly one FILE is required")
		return exitError
	}

	doc, err := lpfile.Load(fs.Arg(0))
	if err != nil {
		return fail(stderr, err)
	}
	if *sense != "" {
		doc.Sense = *sense
	}

	p, err := doc.Problem()
	if err != nil {
		return fail(stderr, err)
	}

	opts := []simplex.Option{simplex.WithMaxPivots(*maxPivots)}
	if *trace {
		opts = append(opts, simplex.WithTracer(pivotTracer(context.Background(), stderr)))
	}

	sol, err := simplex.Solve(p, opts...)
	if err != nil {
		return fail(stderr, err)
	}
	if err := lpfile.Render(stdout, doc, sol); err != nil {
		return fail(stderr, err)
	}

	if sol.Status != simplex.Optimal {
		return exitNoOptimum
	}
	return exitOptimal
}

// pivotTracer 把每次主元以 JSON 日志写到 w。
func pivotTracer(ctx context.Context, w io.Writer) simplex.Tracer {
	logger := logging.NewWithWriter(logging.Config{Service: "lpsolve", Module: "solve", Level: "debug"}, w)
	return logging.SolveTracer(ctx, logger.Logger)
}

func fail(w io.Writer, err error) int {
	fmt.Fprintf(w, "lpsolve: %v\n", err)
	return exitError
}
