package order

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9]+$`)

// Validate 按固定顺序执行全部业务规则校验：
// Symbol → Side → OrderType → Quantity → Price，遇到首个违规立即返回。
// CLI 与 UI 每次只展示一个错误，顺序不可调整。
func Validate(symbol, side, orderType string, quantity decimal.Decimal, price *decimal.Decimal) error {
	if err := validateSymbol(symbol); err != nil {
		return err
	}
	if err := validateSide(side); err != nil {
		return err
	}
	if err := validateOrderType(orderType); err != nil {
		return err
	}
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	return validatePrice(orderType, price)
}

func validateSymbol(symbol string) error {
	if symbol == "" {
		return newValidationError(KindInvalidSymbol, "symbol 不能为空")
	}
	if !symbolPattern.MatchString(strings.ToUpper(symbol)) {
		return newValidationError(KindInvalidSymbol, "symbol 必须为大写字母与数字组合（如 BTCUSDT），当前为 %q", symbol)
	}
	return nil
}

func validateSide(side string) error {
	switch Side(strings.ToUpper(side)) {
	case SideBuy, SideSell:
		return nil
	default:
		return newValidationError(KindInvalidSide, "side 必须为 BUY 或 SELL，当前为 %q", side)
	}
}

func validateOrderType(orderType string) error {
	switch Type(strings.ToUpper(orderType)) {
	case TypeMarket, TypeLimit:
		return nil
	default:
		return newValidationError(KindInvalidOrderType, "order_type 必须为 MARKET 或 LIMIT，当前为 %q", orderType)
	}
}

func validateQuantity(quantity decimal.Decimal) error {
	if quantity.Sign() <= 0 {
		return newValidationError(KindInvalidQuantity, "quantity 必须大于0，当前为 %s", quantity)
	}
	return nil
}

// validatePrice 仅在 LIMIT 订单上检查价格；MARKET 订单不读取价格字段。
func validatePrice(orderType string, price *decimal.Decimal) error {
	if Type(strings.ToUpper(orderType)) != TypeLimit {
		return nil
	}
	if price == nil {
		return newValidationError(KindInvalidPrice, "LIMIT 订单必须提供 price")
	}
	if price.Sign() <= 0 {
		return newValidationError(KindInvalidPrice, "price 必须大于0，当前为 %s", price)
	}
	return nil
}
