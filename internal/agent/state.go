package agent

import "futures-ai/internal/order"

// Stage 标识流水线阶段。
type Stage string

const (
	StageParse     Stage = "parse"
	StageValidate  Stage = "validate"
	StageExecute   Stage = "execute"
	StageSummarize Stage = "summarize"
)

// Failure 记录流水线失败及其来源阶段。
// 单槽位设计：执行阶段的失败会覆盖更早的记录，Stage 字段保留失败来源。
type Failure struct {
	Stage Stage
	Err   error
}

func (f *Failure) Error() string {
	return f.Err.Error()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// State 承载一次调用在四个阶段之间流转的数据。
// 每次调用独享一个 State，阶段间不存在共享可变状态。
type State struct {
	ID       string
	RawInput string
	Order    *order.Order
	Failure  *Failure
	Result   *order.ExecutionResult
	Summary  string
}

// OK 报告流水线是否无失败走完。
func (s State) OK() bool {
	return s.Failure == nil
}
