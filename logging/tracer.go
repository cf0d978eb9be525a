package logging

import (
	"context"
	"log/slog"

	"github.com/wyfcoding/simplex/simplex"
)

// SolveTracer 返回一个把每次主元以 Debug 级别写入日志的 Tracer。
// 级别高于 Debug 时返回 nil，求解器不会产生任何回调开销。
func SolveTracer(ctx context.Context, logger *slog.Logger) simplex.Tracer {
	if logger == nil || !logger.Enabled(ctx, slog.LevelDebug) {
		return nil
	}
	return func(it simplex.Iteration) {
		logger.DebugContext(ctx, "simplex pivot",
			slog.String("phase", it.Phase.String()),
			slog.Int("pivot", it.Pivot),
			slog.Int("entering", it.Entering),
			slog.Int("leaving", it.Leaving),
			slog.Float64("ratio", it.Ratio),
			slog.Float64("objective", it.Objective),
		)
	}
}
