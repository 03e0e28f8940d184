package exchange

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	ccxt "github.com/ccxt/ccxt/go/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"futures-ai/internal/config"
	"futures-ai/internal/order"
)

// ErrLiveTradingDisabled 表示真实下单通道未开启。
var ErrLiveTradingDisabled = errors.New("真实交易所下单未启用，请设置 exchange.live=true 或改用模拟客户端")

// BinanceClient 封装 Binance USDⓈ-M 真实下单能力。
// 默认仅完成连接配置，真实派发需显式开启 exchange.live。
type BinanceClient struct {
	cfg      config.ExchangeConfig
	logger   *zap.Logger
	exchange *ccxt.Binanceusdm
	limiter  *rate.Limiter

	marketsMu     sync.Mutex
	marketsLoaded bool
}

// NewBinanceClient 构造真实客户端。
func NewBinanceClient(cfg config.ExchangeConfig, logger *zap.Logger) (*BinanceClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	userConfig := map[string]interface{}{
		"enableRateLimit": true,
		"options": map[string]interface{}{
			"adjustForTimeDifference": true,
			"defaultType":             "future",
		},
	}

	if cfg.APIKey != "" {
		userConfig["apiKey"] = cfg.APIKey
	}
	if cfg.APISecret != "" {
		userConfig["secret"] = cfg.APISecret
	}

	ex := ccxt.NewBinanceusdm(userConfig)
	if cfg.UseSandbox {
		ex.SetSandboxMode(true)
	}

	orderRate := cfg.OrderRate
	if orderRate <= 0 {
		orderRate = 5
	}
	orderBurst := cfg.OrderBurst
	if orderBurst <= 0 {
		orderBurst = 1
	}

	logger.Info("真实交易所客户端已初始化",
		zap.String("exchange", cfg.Name),
		zap.Bool("sandbox", cfg.UseSandbox),
		zap.Bool("live", cfg.Live),
	)

	return &BinanceClient{
		cfg:      cfg,
		logger:   logger,
		exchange: ex,
		limiter:  rate.NewLimiter(rate.Limit(orderRate), orderBurst),
	}, nil
}

// PlaceMarketOrder 提交市价单。
func (c *BinanceClient) PlaceMarketOrder(ctx context.Context, symbol string, side order.Side, quantity decimal.Decimal) (order.RawResponse, error) {
	if err := c.prepare(ctx); err != nil {
		return nil, err
	}

	result, err := c.exchange.CreateMarketOrder(symbol, strings.ToLower(string(side)), quantity.InexactFloat64())
	if err != nil {
		return nil, fmt.Errorf("提交市价单失败: %w", err)
	}

	return convertOrder(result), nil
}

// PlaceLimitOrder 提交限价单。
func (c *BinanceClient) PlaceLimitOrder(ctx context.Context, symbol string, side order.Side, quantity decimal.Decimal, price decimal.Decimal) (order.RawResponse, error) {
	if err := c.prepare(ctx); err != nil {
		return nil, err
	}

	result, err := c.exchange.CreateLimitOrder(symbol, strings.ToLower(string(side)), quantity.InexactFloat64(), price.InexactFloat64())
	if err != nil {
		return nil, fmt.Errorf("提交限价单失败: %w", err)
	}

	return convertOrder(result), nil
}

// prepare 统一处理派发前置条件：live 开关、限速与市场元数据加载。
func (c *BinanceClient) prepare(ctx context.Context) error {
	if !c.cfg.Live {
		return ErrLiveTradingDisabled
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	return c.ensureMarketsLoaded(ctx)
}

func (c *BinanceClient) ensureMarketsLoaded(ctx context.Context) error {
	if c.marketsLoaded {
		return nil
	}

	c.marketsMu.Lock()
	defer c.marketsMu.Unlock()

	if c.marketsLoaded {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := c.exchange.LoadMarkets(); err != nil {
		return fmt.Errorf("加载市场元数据失败: %w", err)
	}

	c.marketsLoaded = true
	c.logger.Info("已完成市场元数据加载")
	return nil
}

// convertOrder 将 ccxt 订单对象降为原始响应，键名与 Binance 规范对齐。
func convertOrder(o ccxt.Order) order.RawResponse {
	raw := order.RawResponse{}

	if o.Id != nil {
		raw["orderId"] = *o.Id
	}
	if o.Symbol != nil {
		// ccxt 统一符号形如 BTC/USDT:USDT，降为交易所风格的 BTCUSDT。
		unified, _, _ := strings.Cut(*o.Symbol, ":")
		raw["symbol"] = strings.ToUpper(strings.ReplaceAll(unified, "/", ""))
	}
	if o.Side != nil {
		raw["side"] = strings.ToUpper(*o.Side)
	}
	if o.Type != nil {
		raw["type"] = strings.ToUpper(*o.Type)
	}
	if o.Status != nil {
		raw["status"] = convertStatus(*o.Status)
	}
	if o.Price != nil {
		raw["price"] = decimal.NewFromFloat(*o.Price).String()
	}
	if o.Amount != nil {
		raw["origQty"] = decimal.NewFromFloat(*o.Amount).String()
	}
	if o.Filled != nil {
		raw["executedQty"] = decimal.NewFromFloat(*o.Filled).String()
	}

	return raw
}

func convertStatus(status string) string {
	switch strings.ToLower(status) {
	case "open":
		return "NEW"
	case "closed":
		return "FILLED"
	case "canceled":
		return "CANCELED"
	default:
		return strings.ToUpper(status)
	}
}
