package order

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Side 表示下单方向。
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Type 表示订单类型。
type Type string

const (
	TypeMarket Type = "MARKET"
	TypeLimit  Type = "LIMIT"
)

// Order 表示一笔结构化订单。
// 字段均已通过校验，非法订单以错误形式存在，不会出现半成品结构。
type Order struct {
	Symbol   string           `json:"symbol"`
	Side     Side             `json:"side"`
	Type     Type             `json:"order_type"`
	Quantity decimal.Decimal  `json:"quantity"`
	Price    *decimal.Decimal `json:"price"`
}

// RawResponse 保存交易所返回的原始载荷，用于审计。
type RawResponse map[string]interface{}

// ExecutionResult 为归一化后的执行结果。
type ExecutionResult struct {
	OrderID     string      `json:"orderId"`
	Symbol      string      `json:"symbol"`
	Side        string      `json:"side"`
	Type        string      `json:"type"`
	Status      string      `json:"status"`
	Price       string      `json:"price"`
	OrigQty     string      `json:"origQty"`
	ExecutedQty string      `json:"executedQty"`
	Raw         RawResponse `json:"raw"`
}

// FormatResult 将交易所的异构响应整理为统一结构。
// 纯函数：同一原始载荷多次调用产生相同结果。
func FormatResult(raw RawResponse) ExecutionResult {
	return ExecutionResult{
		OrderID:     rawString(raw, "orderId"),
		Symbol:      rawString(raw, "symbol"),
		Side:        rawString(raw, "side"),
		Type:        rawString(raw, "type"),
		Status:      rawString(raw, "status"),
		Price:       rawString(raw, "price"),
		OrigQty:     rawString(raw, "origQty"),
		ExecutedQty: rawString(raw, "executedQty"),
		Raw:         raw,
	}
}

func rawString(raw RawResponse, key string) string {
	value, ok := raw[key]
	if !ok || value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return decimal.NewFromFloat(v).String()
	case decimal.Decimal:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
