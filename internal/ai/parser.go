package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"futures-ai/internal/order"
)

const parseTemplate = `
你是 Binance USDⓈ-M 合约系统的确定性交易指令解析器。

你唯一的任务：把用户的交易指令转换为结构化订单。

禁止行为：
- 解释或评论
- 增加额外字段
- 编造数值
- 猜测缺失的必要信息
- 修改数量或价格
- 假设杠杆、保证金、止损或止盈

输出字段（不允许其他字段）：
symbol: 字符串
side: BUY 或 SELL
order_type: MARKET 或 LIMIT
quantity: 数值
price: 数值或 null

符号规则：
- BTC → BTCUSDT，ETH → ETHUSDT
- 仅给出基础资产时默认 USDT 交易对
- 符号保持大写
- 无法确定符号 → 解析失败

方向规则：
- "long"/"buy"/"做多"/"买入" → BUY
- "short"/"sell"/"做空"/"卖出" → SELL
- 方向不明确 → 解析失败

订单类型规则：
- 指令中给出明确价格 → LIMIT
- 未给出价格 → MARKET，price 填 null

数量规则：
- 提取指令中的确切数量，不推断不计算
- 数量缺失 → 解析失败

失败规则：
任何必要字段（symbol、side、quantity、order_type）无法确定时，
输出 {"error": "<失败原因>"}，不要猜测。

示例1：
输入: "Buy 0.01 BTC at market"
输出: {"symbol": "BTCUSDT", "side": "BUY", "order_type": "MARKET", "quantity": 0.01, "price": null}

示例2：
输入: "Short 0.5 ETH at 2800"
输出: {"symbol": "ETHUSDT", "side": "SELL", "order_type": "LIMIT", "quantity": 0.5, "price": 2800}

示例3（失败）：
输入: "Buy BTC"
输出: {"error": "缺少数量"}

只输出唯一的 JSON 对象。现在解析这条指令：
{{ .Input }}
`

var parseTmpl = template.Must(template.New("parse").Parse(parseTemplate))

// ParseError 表示自然语言指令无法解析为完整无歧义的订单。
type ParseError struct {
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("解析指令失败: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("解析指令失败: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// candidate 对应模型输出的固定 schema。
type candidate struct {
	Symbol    string           `json:"symbol"`
	Side      string           `json:"side"`
	OrderType string           `json:"order_type"`
	Quantity  decimal.Decimal  `json:"quantity"`
	Price     *decimal.Decimal `json:"price"`
	Error     string           `json:"error"`
}

// Parser 把自由文本指令转换为订单候选。
// 解析结果不被盲目信任，订单服务会再做完整校验。
type Parser struct {
	completer Completer
	logger    *zap.Logger
}

// NewParser 创建指令解析器。
func NewParser(completer Completer, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{
		completer: completer,
		logger:    logger,
	}
}

// Parse 解析一条交易指令。失败不会自动重试。
func (p *Parser) Parse(ctx context.Context, text string) (order.Order, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return order.Order{}, &ParseError{Message: "指令不能为空"}
	}

	var buf bytes.Buffer
	if err := parseTmpl.Execute(&buf, struct{ Input string }{Input: text}); err != nil {
		return order.Order{}, &ParseError{Message: "渲染提示词失败", Err: err}
	}

	p.logger.Info("开始解析交易指令", zap.String("raw_input", text))

	content, err := p.completer.Complete(ctx, buf.String())
	if err != nil {
		return order.Order{}, &ParseError{Message: "文本生成调用失败", Err: err}
	}

	parsed, err := decodeCandidate(content)
	if err != nil {
		p.logger.Error("解析模型输出失败",
			zap.Error(err),
			zap.String("raw_content", content),
		)
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			return order.Order{}, err
		}
		return order.Order{}, &ParseError{Message: "模型输出不符合 schema", Err: err}
	}

	p.logger.Info("指令解析成功",
		zap.String("symbol", parsed.Symbol),
		zap.String("side", string(parsed.Side)),
		zap.String("order_type", string(parsed.Type)),
		zap.String("quantity", parsed.Quantity.String()),
	)

	return parsed, nil
}

func decodeCandidate(content string) (order.Order, error) {
	payload, err := extractJSON(content)
	if err != nil {
		return order.Order{}, err
	}

	var c candidate
	if err := json.Unmarshal(payload, &c); err != nil {
		return order.Order{}, fmt.Errorf("解析候选JSON失败: %w", err)
	}

	if c.Error != "" {
		return order.Order{}, &ParseError{Message: c.Error}
	}

	// 必要字段缺失时模型本应返回 error 字段，这里兜底拒绝，绝不猜测。
	if c.Symbol == "" || c.Side == "" || c.OrderType == "" || c.Quantity.IsZero() {
		return order.Order{}, &ParseError{Message: "模型输出缺少必要字段"}
	}

	return order.Order{
		Symbol:   strings.ToUpper(c.Symbol),
		Side:     order.Side(strings.ToUpper(c.Side)),
		Type:     order.Type(strings.ToUpper(c.OrderType)),
		Quantity: c.Quantity,
		Price:    c.Price,
	}, nil
}

func extractJSON(content string) ([]byte, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")

	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("模型输出未找到有效JSON: %s", content)
	}

	return []byte(content[start : end+1]), nil
}
