package app

import (
	"context"

	"go.uber.org/zap"

	"futures-ai/internal/agent"
	"futures-ai/internal/ai"
	"futures-ai/internal/config"
	"futures-ai/internal/exchange"
	"futures-ai/internal/order"
	"futures-ai/internal/server"
	"futures-ai/internal/store"
)

// App 聚合核心依赖：交易所客户端、订单服务、指令工作流与审计库。
type App struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    *store.Store
	service  *order.Service
	workflow *agent.Workflow
}

// New 按配置完成依赖装配。
func New(cfg *config.Config, logger *zap.Logger, auditStore *store.Store) (*App, error) {
	client, err := newExchangeClient(cfg.Exchange, logger)
	if err != nil {
		return nil, err
	}

	service := order.NewService(client, cfg.Exchange.Timeout, logger)

	aiClient, err := ai.NewClient(cfg.OpenAI, logger)
	if err != nil {
		return nil, err
	}

	parser := ai.NewParser(aiClient, logger)
	summarizer := ai.NewSummarizer(aiClient, logger)
	workflow := agent.NewWorkflow(parser, service, summarizer, logger)

	return &App{
		cfg:      cfg,
		logger:   logger,
		store:    auditStore,
		service:  service,
		workflow: workflow,
	}, nil
}

// Service 返回订单服务。
func (a *App) Service() *order.Service {
	return a.service
}

// Workflow 返回指令工作流。
func (a *App) Workflow() *agent.Workflow {
	return a.workflow
}

// Store 返回执行审计库。
func (a *App) Store() *store.Store {
	return a.store
}

// Serve 启动 HTTP 服务并阻塞到 ctx 取消。
func (a *App) Serve(ctx context.Context) error {
	srv := server.New(a.cfg.Server, a.service, a.workflow, a.store, a.logger)
	return srv.Run(ctx)
}

// newExchangeClient 按配置选择模拟或真实交易所客户端。
func newExchangeClient(cfg config.ExchangeConfig, logger *zap.Logger) (order.Client, error) {
	if cfg.UseMock {
		logger.Info("使用模拟交易所客户端", zap.Duration("mock_latency", cfg.MockLatency))
		return exchange.NewMockClient(cfg.MockLatency, logger), nil
	}

	logger.Info("使用真实交易所客户端", zap.String("exchange", cfg.Name))
	return exchange.NewBinanceClient(cfg, logger)
}
