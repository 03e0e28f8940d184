package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"futures-ai/internal/config"
	"futures-ai/internal/exchange"
	"futures-ai/internal/order"
)

func newTestServer() *Server {
	service := order.NewService(exchange.NewMockClient(0, nil), 0, nil)
	return New(config.ServerConfig{Port: 8080}, service, nil, nil, nil)
}

func TestHandleOrder_Success(t *testing.T) {
	srv := newTestServer()

	body := `{"symbol": "BTCUSDT", "side": "BUY", "order_type": "MARKET", "quantity": 0.01}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	recorder := httptest.NewRecorder()

	srv.handleOrder(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var result order.ExecutionResult
	if err := json.NewDecoder(recorder.Body).Decode(&result); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if result.Status != "FILLED" {
		t.Errorf("expected status FILLED, got %s", result.Status)
	}
	if result.ExecutedQty != "0.01" {
		t.Errorf("expected executedQty 0.01, got %s", result.ExecutedQty)
	}
}

func TestHandleOrder_ValidationFailureReturns400(t *testing.T) {
	srv := newTestServer()

	// LIMIT 缺少价格，应命中 InvalidPrice。
	body := `{"symbol": "BTCUSDT", "side": "BUY", "order_type": "LIMIT", "quantity": 1}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	recorder := httptest.NewRecorder()

	srv.handleOrder(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}

	var payload map[string]string
	if err := json.NewDecoder(recorder.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if payload["kind"] != string(order.KindInvalidPrice) {
		t.Errorf("expected kind INVALID_PRICE, got %s", payload["kind"])
	}
}

func TestHandleOrder_BadJSONReturns400(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader("{not json"))
	recorder := httptest.NewRecorder()

	srv.handleOrder(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}
