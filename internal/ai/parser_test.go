package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedCompleter struct {
	replies []string
	errs    []error
	prompts []string
}

func (s *scriptedCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	idx := len(s.prompts) - 1

	var err error
	if idx < len(s.errs) {
		err = s.errs[idx]
	}
	if err != nil {
		return "", err
	}

	var reply string
	if idx < len(s.replies) {
		reply = s.replies[idx]
	}
	return reply, nil
}

func TestParser_MarketInstruction(t *testing.T) {
	completer := &scriptedCompleter{
		replies: []string{`{"symbol": "BTCUSDT", "side": "BUY", "order_type": "MARKET", "quantity": 0.01, "price": null}`},
	}
	parser := NewParser(completer, nil)

	parsed, err := parser.Parse(context.Background(), "Buy 0.01 BTC at market")
	require.NoError(t, err)

	assert.Equal(t, "BTCUSDT", parsed.Symbol)
	assert.Equal(t, "BUY", string(parsed.Side))
	assert.Equal(t, "MARKET", string(parsed.Type))
	assert.Equal(t, "0.01", parsed.Quantity.String())
	assert.Nil(t, parsed.Price)
}

func TestParser_LimitInstruction(t *testing.T) {
	completer := &scriptedCompleter{
		replies: []string{`{"symbol": "ETHUSDT", "side": "SELL", "order_type": "LIMIT", "quantity": 0.5, "price": 2800}`},
	}
	parser := NewParser(completer, nil)

	parsed, err := parser.Parse(context.Background(), "Short 0.5 ETH at 2800")
	require.NoError(t, err)

	assert.Equal(t, "ETHUSDT", parsed.Symbol)
	assert.Equal(t, "SELL", string(parsed.Side))
	assert.Equal(t, "LIMIT", string(parsed.Type))
	require.NotNil(t, parsed.Price)
	assert.Equal(t, "2800", parsed.Price.String())
}

// 模型被允许在 JSON 外包裹说明文字，解析器必须能提取其中的对象。
func TestParser_ExtractsEmbeddedJSON(t *testing.T) {
	completer := &scriptedCompleter{
		replies: []string{"```json\n{\"symbol\": \"BTCUSDT\", \"side\": \"BUY\", \"order_type\": \"MARKET\", \"quantity\": 1, \"price\": null}\n```"},
	}
	parser := NewParser(completer, nil)

	parsed, err := parser.Parse(context.Background(), "Buy 1 BTC")
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", parsed.Symbol)
}

func TestParser_ModelReportedFailure(t *testing.T) {
	completer := &scriptedCompleter{
		replies: []string{`{"error": "缺少数量"}`},
	}
	parser := NewParser(completer, nil)

	_, err := parser.Parse(context.Background(), "Buy BTC")
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Message, "缺少数量")
}

func TestParser_MissingRequiredFieldIsFailure(t *testing.T) {
	// 模型违反契约直接省略 quantity 时同样判定为解析失败，绝不猜测。
	completer := &scriptedCompleter{
		replies: []string{`{"symbol": "BTCUSDT", "side": "BUY", "order_type": "MARKET", "price": null}`},
	}
	parser := NewParser(completer, nil)

	_, err := parser.Parse(context.Background(), "Buy BTC")

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParser_MalformedReply(t *testing.T) {
	completer := &scriptedCompleter{
		replies: []string{"I cannot help with that."},
	}
	parser := NewParser(completer, nil)

	_, err := parser.Parse(context.Background(), "Buy 1 BTC")

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParser_CompleterFailureCarriesCause(t *testing.T) {
	cause := errors.New("upstream timeout")
	completer := &scriptedCompleter{errs: []error{cause}}
	parser := NewParser(completer, nil)

	_, err := parser.Parse(context.Background(), "Buy 1 BTC")

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.ErrorIs(t, err, cause)
}

func TestParser_EmptyInstruction(t *testing.T) {
	completer := &scriptedCompleter{}
	parser := NewParser(completer, nil)

	_, err := parser.Parse(context.Background(), "   ")

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Empty(t, completer.prompts, "completer must not be called for empty input")
}
