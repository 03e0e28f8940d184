package order

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

type fakeClient struct {
	calls      []string
	lastSymbol string
	lastSide   Side
	err        error
}

func (f *fakeClient) PlaceMarketOrder(_ context.Context, symbol string, side Side, quantity decimal.Decimal) (RawResponse, error) {
	f.calls = append(f.calls, "market")
	f.lastSymbol = symbol
	f.lastSide = side
	if f.err != nil {
		return nil, f.err
	}
	return RawResponse{
		"symbol":      symbol,
		"side":        string(side),
		"type":        "MARKET",
		"status":      "FILLED",
		"orderId":     int64(4567890),
		"price":       "0",
		"origQty":     quantity.String(),
		"executedQty": quantity.String(),
	}, nil
}

func (f *fakeClient) PlaceLimitOrder(_ context.Context, symbol string, side Side, quantity decimal.Decimal, price decimal.Decimal) (RawResponse, error) {
	f.calls = append(f.calls, "limit")
	f.lastSymbol = symbol
	f.lastSide = side
	if f.err != nil {
		return nil, f.err
	}
	return RawResponse{
		"symbol":      symbol,
		"side":        string(side),
		"type":        "LIMIT",
		"status":      "NEW",
		"orderId":     int64(7654321),
		"price":       price.String(),
		"origQty":     quantity.String(),
		"executedQty": "0",
	}, nil
}

func TestServiceExecute_MarketOrderFills(t *testing.T) {
	client := &fakeClient{}
	svc := NewService(client, 0, nil)

	result, err := svc.Execute(context.Background(), "BTCUSDT", "BUY", "MARKET", decimal.RequireFromString("0.01"), nil)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if result.Status != "FILLED" {
		t.Errorf("expected status FILLED, got %s", result.Status)
	}
	if result.ExecutedQty != "0.01" {
		t.Errorf("expected executedQty 0.01, got %s", result.ExecutedQty)
	}
	if result.OrderID != "4567890" {
		t.Errorf("expected orderId 4567890, got %s", result.OrderID)
	}
	if len(client.calls) != 1 || client.calls[0] != "market" {
		t.Errorf("unexpected client calls: %v", client.calls)
	}
}

func TestServiceExecute_LimitOrderRestsAsNew(t *testing.T) {
	client := &fakeClient{}
	svc := NewService(client, 0, nil)

	price := decimal.NewFromInt(2800)
	result, err := svc.Execute(context.Background(), "ETHUSDT", "SELL", "LIMIT", decimal.RequireFromString("0.5"), &price)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if result.Status != "NEW" {
		t.Errorf("expected status NEW, got %s", result.Status)
	}
	if result.ExecutedQty != "0" {
		t.Errorf("expected executedQty 0, got %s", result.ExecutedQty)
	}
	if result.Price != "2800" {
		t.Errorf("expected price 2800, got %s", result.Price)
	}
}

// 小写输入必须在校验与派发之前归一化为大写。
func TestServiceExecute_NormalizesCase(t *testing.T) {
	client := &fakeClient{}
	svc := NewService(client, 0, nil)

	_, err := svc.Execute(context.Background(), "btcusdt", "buy", "market", decimal.NewFromInt(1), nil)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if client.lastSymbol != "BTCUSDT" {
		t.Errorf("expected normalized symbol BTCUSDT, got %s", client.lastSymbol)
	}
	if client.lastSide != SideBuy {
		t.Errorf("expected normalized side BUY, got %s", client.lastSide)
	}
}

func TestServiceExecute_LimitWithoutPriceFailsValidation(t *testing.T) {
	client := &fakeClient{}
	svc := NewService(client, 0, nil)

	_, err := svc.Execute(context.Background(), "BTCUSDT", "BUY", "LIMIT", decimal.NewFromInt(1), nil)
	if err == nil {
		t.Fatalf("expected validation failure")
	}

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if validationErr.Kind != KindInvalidPrice {
		t.Errorf("expected InvalidPrice, got %s", validationErr.Kind)
	}
	if len(client.calls) != 0 {
		t.Errorf("client must not be called on validation failure, got %v", client.calls)
	}
}

// 交易所失败必须以 ExecutionError 暴露，与校验错误可区分。
func TestServiceExecute_ClientFailureIsExecutionError(t *testing.T) {
	client := &fakeClient{err: errors.New("connection reset")}
	svc := NewService(client, 0, nil)

	_, err := svc.Execute(context.Background(), "BTCUSDT", "BUY", "MARKET", decimal.NewFromInt(1), nil)
	if err == nil {
		t.Fatalf("expected execution failure")
	}

	var executionErr *ExecutionError
	if !errors.As(err, &executionErr) {
		t.Fatalf("expected *ExecutionError, got %T", err)
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		t.Fatalf("execution failure must not be a ValidationError")
	}
}

func TestFormatResult_Idempotent(t *testing.T) {
	raw := RawResponse{
		"symbol":      "BTCUSDT",
		"side":        "BUY",
		"type":        "MARKET",
		"status":      "FILLED",
		"orderId":     int64(1234567),
		"price":       "0",
		"origQty":     "0.01",
		"executedQty": "0.01",
	}

	first := FormatResult(raw)
	second := FormatResult(raw)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("FormatResult not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	if first.OrderID != "1234567" {
		t.Errorf("expected orderId 1234567, got %s", first.OrderID)
	}
}

func TestFormatResult_NumericOrderID(t *testing.T) {
	// JSON 反序列化后的数值会变为 float64，格式化不得出现科学计数法。
	raw := RawResponse{"orderId": float64(9876543)}

	result := FormatResult(raw)
	if result.OrderID != "9876543" {
		t.Errorf("expected orderId 9876543, got %s", result.OrderID)
	}
}
