package order

import "fmt"

// ValidationKind 标识被违反的业务规则。
type ValidationKind string

const (
	KindInvalidSymbol        ValidationKind = "INVALID_SYMBOL"
	KindInvalidSide          ValidationKind = "INVALID_SIDE"
	KindInvalidOrderType     ValidationKind = "INVALID_ORDER_TYPE"
	KindInvalidQuantity      ValidationKind = "INVALID_QUANTITY"
	KindInvalidPrice         ValidationKind = "INVALID_PRICE"
	KindUnsupportedOrderType ValidationKind = "UNSUPPORTED_ORDER_TYPE"
)

// ValidationError 表示订单违反业务规则，对调用方总是可恢复的。
type ValidationError struct {
	Kind    ValidationKind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(kind ValidationKind, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// ExecutionError 表示交易所侧拒绝或失败的派发。
// 与 ValidationError 区分，调用方据此分辨"输入有误"与"交易所失败"。
type ExecutionError struct {
	Op  string
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("订单派发失败(%s): %v", e.Op, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
