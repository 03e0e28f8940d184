package exchange

import (
	"context"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"futures-ai/internal/order"
)

// MockClient 模拟 Binance 合约执行，用于 use_mock=true 场景。
// 响应结构固定：市价单立即成交，限价单挂单等待。
type MockClient struct {
	latency time.Duration
	logger  *zap.Logger
}

// NewMockClient 创建模拟客户端。latency 用于模拟网络时延。
func NewMockClient(latency time.Duration, logger *zap.Logger) *MockClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MockClient{
		latency: latency,
		logger:  logger,
	}
}

// PlaceMarketOrder 模拟市价单：状态 FILLED，全量成交。
func (c *MockClient) PlaceMarketOrder(ctx context.Context, symbol string, side order.Side, quantity decimal.Decimal) (order.RawResponse, error) {
	c.logger.Info("[MOCK] 市价单",
		zap.String("symbol", symbol),
		zap.String("side", string(side)),
		zap.String("quantity", quantity.String()),
	)

	if err := c.sleep(ctx); err != nil {
		return nil, err
	}

	return order.RawResponse{
		"symbol":      symbol,
		"side":        string(side),
		"type":        string(order.TypeMarket),
		"status":      "FILLED",
		"orderId":     randomOrderID(),
		"price":       "0",
		"origQty":     quantity.String(),
		"executedQty": quantity.String(),
	}, nil
}

// PlaceLimitOrder 模拟限价单：状态 NEW，成交量为 0。
func (c *MockClient) PlaceLimitOrder(ctx context.Context, symbol string, side order.Side, quantity decimal.Decimal, price decimal.Decimal) (order.RawResponse, error) {
	c.logger.Info("[MOCK] 限价单",
		zap.String("symbol", symbol),
		zap.String("side", string(side)),
		zap.String("quantity", quantity.String()),
		zap.String("price", price.String()),
	)

	if err := c.sleep(ctx); err != nil {
		return nil, err
	}

	return order.RawResponse{
		"symbol":      symbol,
		"side":        string(side),
		"type":        string(order.TypeLimit),
		"status":      "NEW",
		"orderId":     randomOrderID(),
		"price":       price.String(),
		"origQty":     quantity.String(),
		"executedQty": "0",
	}, nil
}

func (c *MockClient) sleep(ctx context.Context) error {
	if c.latency <= 0 {
		return nil
	}

	timer := time.NewTimer(c.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func randomOrderID() int64 {
	return 1000000 + rand.Int63n(9000000)
}
