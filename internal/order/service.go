package order

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Client 抽象交易所下单能力，由 internal/exchange 提供模拟与真实两种实现。
type Client interface {
	PlaceMarketOrder(ctx context.Context, symbol string, side Side, quantity decimal.Decimal) (RawResponse, error)
	PlaceLimitOrder(ctx context.Context, symbol string, side Side, quantity decimal.Decimal, price decimal.Decimal) (RawResponse, error)
}

// Service 负责订单执行的业务编排：归一化 → 校验 → 派发 → 响应整理。
type Service struct {
	client  Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewService 创建订单服务。
func NewService(client Client, timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:  client,
		timeout: timeout,
		logger:  logger,
	}
}

// Execute 在完整校验后派发订单。
// 手工表单与智能体两条入口都直接调用这里，因此不信任上游校验，始终重新校验。
func (s *Service) Execute(ctx context.Context, symbol, side, orderType string, quantity decimal.Decimal, price *decimal.Decimal) (ExecutionResult, error) {
	symbol = strings.ToUpper(symbol)
	side = strings.ToUpper(side)
	orderType = strings.ToUpper(orderType)

	s.logger.Info("开始执行订单",
		zap.String("symbol", symbol),
		zap.String("side", side),
		zap.String("order_type", orderType),
		zap.String("quantity", quantity.String()),
		zap.Stringp("price", priceString(price)),
	)

	if err := Validate(symbol, side, orderType, quantity, price); err != nil {
		s.logger.Warn("订单校验失败", zap.Error(err))
		return ExecutionResult{}, err
	}

	dispatchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		raw RawResponse
		err error
	)

	switch Type(orderType) {
	case TypeMarket:
		raw, err = s.client.PlaceMarketOrder(dispatchCtx, symbol, Side(side), quantity)
	case TypeLimit:
		raw, err = s.client.PlaceLimitOrder(dispatchCtx, symbol, Side(side), quantity, *price)
	default:
		// 正常情况下校验已拦截，这里兜底防止静默忽略。
		return ExecutionResult{}, newValidationError(KindUnsupportedOrderType, "不支持的订单类型: %s", orderType)
	}

	if err != nil {
		s.logger.Error("订单派发失败", zap.Error(err))
		return ExecutionResult{}, &ExecutionError{Op: strings.ToLower(orderType), Err: err}
	}

	result := FormatResult(raw)

	s.logger.Info("订单执行成功",
		zap.String("order_id", result.OrderID),
		zap.String("status", result.Status),
		zap.String("executed_qty", result.ExecutedQty),
	)

	return result, nil
}

func priceString(price *decimal.Decimal) *string {
	if price == nil {
		return nil
	}
	s := price.String()
	return &s
}
