package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"text/template"

	"go.uber.org/zap"

	"futures-ai/internal/order"
)

// SummaryFallback 为摘要协作方失败时的固定兜底文案。
const SummaryFallback = "摘要生成失败。"

const summaryTemplate = `
你是 Binance 合约交易系统的专业执行分析师。

请为下面这笔已执行的交易生成简洁、客观的说明。

规则：
- 不提供交易建议
- 不做推测
- 只使用给出的执行数据
- 最多 4–6 句话

执行数据：
{{ .ResultJSON }}
`

var summaryTmpl = template.Must(template.New("summary").Parse(summaryTemplate))

// Summarizer 为执行结果生成自然语言说明，属于尽力而为的能力。
type Summarizer struct {
	completer Completer
	logger    *zap.Logger
}

// NewSummarizer 创建摘要器。
func NewSummarizer(completer Completer, logger *zap.Logger) *Summarizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Summarizer{
		completer: completer,
		logger:    logger,
	}
}

// Summarize 生成执行结果说明。
// 协作方失败时降级为固定文案，绝不让摘要失败阻断整个流程。
func (s *Summarizer) Summarize(ctx context.Context, result order.ExecutionResult) string {
	resultJSON, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		s.logger.Warn("序列化执行结果失败", zap.Error(err))
		return SummaryFallback
	}

	var buf bytes.Buffer
	if err := summaryTmpl.Execute(&buf, struct{ ResultJSON string }{ResultJSON: string(resultJSON)}); err != nil {
		s.logger.Warn("渲染摘要提示词失败", zap.Error(err))
		return SummaryFallback
	}

	content, err := s.completer.Complete(ctx, buf.String())
	if err != nil {
		s.logger.Warn("摘要生成失败，使用兜底文案", zap.Error(err))
		return SummaryFallback
	}

	return content
}
