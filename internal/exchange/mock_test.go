package exchange

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"futures-ai/internal/order"
)

func TestMockClient_MarketOrderFillsInFull(t *testing.T) {
	client := NewMockClient(0, nil)

	raw, err := client.PlaceMarketOrder(context.Background(), "BTCUSDT", order.SideBuy, decimal.RequireFromString("0.01"))
	if err != nil {
		t.Fatalf("PlaceMarketOrder returned error: %v", err)
	}

	if raw["status"] != "FILLED" {
		t.Errorf("expected status FILLED, got %v", raw["status"])
	}
	if raw["executedQty"] != "0.01" {
		t.Errorf("expected executedQty 0.01, got %v", raw["executedQty"])
	}
	if raw["price"] != "0" {
		t.Errorf("expected price 0 for market fill, got %v", raw["price"])
	}

	id, ok := raw["orderId"].(int64)
	if !ok {
		t.Fatalf("expected int64 orderId, got %T", raw["orderId"])
	}
	if id < 1000000 || id > 9999999 {
		t.Errorf("orderId out of range: %d", id)
	}
}

func TestMockClient_LimitOrderRests(t *testing.T) {
	client := NewMockClient(0, nil)

	price := decimal.NewFromInt(2800)
	raw, err := client.PlaceLimitOrder(context.Background(), "ETHUSDT", order.SideSell, decimal.RequireFromString("0.5"), price)
	if err != nil {
		t.Fatalf("PlaceLimitOrder returned error: %v", err)
	}

	if raw["status"] != "NEW" {
		t.Errorf("expected status NEW, got %v", raw["status"])
	}
	if raw["executedQty"] != "0" {
		t.Errorf("expected executedQty 0, got %v", raw["executedQty"])
	}
	if raw["price"] != "2800" {
		t.Errorf("expected price 2800, got %v", raw["price"])
	}
	if raw["origQty"] != "0.5" {
		t.Errorf("expected origQty 0.5, got %v", raw["origQty"])
	}
}

func TestMockClient_LatencyRespectsContext(t *testing.T) {
	client := NewMockClient(time.Minute, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.PlaceMarketOrder(ctx, "BTCUSDT", order.SideBuy, decimal.NewFromInt(1))
	if err == nil {
		t.Fatalf("expected context deadline error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("cancellation took too long: %s", elapsed)
	}
}

func TestMockClient_ResponseShapeRoundTrips(t *testing.T) {
	client := NewMockClient(0, nil)

	raw, err := client.PlaceMarketOrder(context.Background(), "BTCUSDT", order.SideBuy, decimal.RequireFromString("0.25"))
	if err != nil {
		t.Fatalf("PlaceMarketOrder returned error: %v", err)
	}

	result := order.FormatResult(raw)
	if result.Symbol != "BTCUSDT" || result.Side != "BUY" || result.Type != "MARKET" {
		t.Errorf("unexpected normalized result: %+v", result)
	}
	if _, err := strconv.ParseInt(result.OrderID, 10, 64); err != nil {
		t.Errorf("orderId not numeric: %q", result.OrderID)
	}
}
