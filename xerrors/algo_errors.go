package xerrors

var (
	// ErrEmptyObjective 目标函数为空。
	ErrEmptyObjective = New(ErrInvalidArg, 400101, "empty objective", "objective must have at least one coefficient", nil)
	// ErrDimMismatchBounds 约束行数与右端项个数不一致。
	ErrDimMismatchBounds = New(ErrInvalidArg, 400102, "dimension mismatch bounds", "len(rhs) must equal the number of constraint rows", nil)
	// ErrRaggedRow 约束矩阵某一行的长度与目标函数维度不一致。
	ErrRaggedRow = New(ErrInvalidArg, 400103, "ragged constraint row", "every constraint row must have len(objective) entries", nil)
	// ErrRelationCount 关系符个数与约束行数不一致。
	ErrRelationCount = New(ErrInvalidArg, 400104, "relation count mismatch", "len(relations) must be zero or equal the number of rows", nil)
	// ErrUnknownRelation 无法识别的关系符。
	ErrUnknownRelation = New(ErrInvalidArg, 400105, "unknown relation", "supported relations: <=, >=, =", nil)
	// ErrNonFinite 系数中出现 NaN 或无穷大。
	ErrNonFinite = New(ErrInvalidArg, 400106, "non-finite coefficient", "coefficients must be finite numbers", nil)
	// ErrUpperBoundCount 上界个数与变量个数不一致。
	ErrUpperBoundCount = New(ErrInvalidArg, 400107, "upper bound count mismatch", "len(upper_bounds) must be zero or equal len(objective)", nil)
	// ErrUnknownSense 无法识别的优化方向。
	ErrUnknownSense = New(ErrInvalidArg, 400108, "unknown sense", "supported senses: max, min", nil)

	// ErrInfeasibleProblem 线性规划无可行解。
	ErrInfeasibleProblem = New(ErrUnprocessable, 422101, "infeasible problem", "no non-negative assignment satisfies every constraint", nil)
	// ErrUnboundedProblem 线性规划无界。
	ErrUnboundedProblem = New(ErrUnprocessable, 422102, "unbounded problem", "objective can be improved without limit", nil)
	// ErrCycleLimit 主元次数超出预算，结果不确定。
	ErrCycleLimit = New(ErrUnprocessable, 422103, "cycle limit exceeded", "pivot budget exhausted before a definitive result", nil)

	// ErrPhaseOneUnbounded 第一阶段出现无界方向，违反内部不变量。
	ErrPhaseOneUnbounded = New(ErrInternal, 500101, "phase one unbounded", "feasibility objective is bounded by zero; tableau is corrupt", nil)
)
