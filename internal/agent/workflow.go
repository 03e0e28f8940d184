package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"futures-ai/internal/ai"
	"futures-ai/internal/order"
)

// Workflow 以固定顺序驱动 解析 → 校验 → 执行 → 摘要 四个阶段。
// 解析之后的每个阶段都先检查失败槽位，已失败则原样透传；
// 摘要阶段例外，它始终运行以渲染用户可见的结果或错误。
type Workflow struct {
	parser     *ai.Parser
	service    *order.Service
	summarizer *ai.Summarizer
	logger     *zap.Logger
}

// NewWorkflow 创建工作流编排器。
func NewWorkflow(parser *ai.Parser, service *order.Service, summarizer *ai.Summarizer, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{
		parser:     parser,
		service:    service,
		summarizer: summarizer,
		logger:     logger,
	}
}

// Run 对一条指令执行完整流水线。每条指令至多尝试一次，不自动重试。
func (w *Workflow) Run(ctx context.Context, input string) State {
	state := State{
		ID:       uuid.NewString(),
		RawInput: input,
	}

	logger := w.logger.With(zap.String("workflow_id", state.ID))
	logger.Info("工作流开始", zap.String("raw_input", input))

	state = w.parse(ctx, state, logger)
	state = w.validate(ctx, state, logger)
	state = w.execute(ctx, state, logger)
	state = w.summarize(ctx, state, logger)

	logger.Info("工作流结束", zap.Bool("ok", state.OK()))
	return state
}

func (w *Workflow) parse(ctx context.Context, state State, logger *zap.Logger) State {
	parsed, err := w.parser.Parse(ctx, state.RawInput)
	if err != nil {
		logger.Warn("解析阶段失败", zap.Error(err))
		state.Failure = &Failure{Stage: StageParse, Err: err}
		state.Order = nil
		return state
	}

	state.Order = &parsed
	return state
}

func (w *Workflow) validate(_ context.Context, state State, logger *zap.Logger) State {
	if state.Failure != nil {
		logger.Debug("校验阶段跳过：已存在失败")
		return state
	}

	ord := state.Order
	if err := order.Validate(ord.Symbol, string(ord.Side), string(ord.Type), ord.Quantity, ord.Price); err != nil {
		logger.Warn("校验阶段失败", zap.Error(err))
		state.Failure = &Failure{Stage: StageValidate, Err: err}
		return state
	}

	logger.Info("订单校验通过", zap.String("symbol", ord.Symbol))
	return state
}

func (w *Workflow) execute(ctx context.Context, state State, logger *zap.Logger) State {
	if state.Failure != nil {
		logger.Debug("执行阶段跳过：已存在失败")
		return state
	}

	ord := state.Order
	result, err := w.service.Execute(ctx, ord.Symbol, string(ord.Side), string(ord.Type), ord.Quantity, ord.Price)
	if err != nil {
		logger.Error("执行阶段失败", zap.Error(err))
		// 后发失败覆盖槽位，Stage 标记保留失败来源。
		state.Failure = &Failure{Stage: StageExecute, Err: err}
		return state
	}

	state.Result = &result
	logger.Info("执行阶段成功",
		zap.String("order_id", result.OrderID),
		zap.String("status", result.Status),
	)
	return state
}

func (w *Workflow) summarize(ctx context.Context, state State, logger *zap.Logger) State {
	if state.Failure != nil {
		state.Summary = fmt.Sprintf("❌ 错误: %v", state.Failure.Err)
		return state
	}

	if state.Result == nil {
		state.Summary = "暂无执行结果。"
		return state
	}

	state.Summary = w.summarizer.Summarize(ctx, *state.Result)
	return state
}
