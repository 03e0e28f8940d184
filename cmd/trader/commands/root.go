package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"futures-ai/internal/app"
	"futures-ai/internal/config"
	"futures-ai/internal/log"
	"futures-ai/internal/store"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "trader",
	Short: "AI 合约下单代理",
	Long: `futures-ai 将手工表单或自然语言指令转换为经过校验的合约订单。

Examples:
  trader order --symbol BTCUSDT --side BUY --type MARKET --quantity 0.01
  trader instruct "Short 0.5 ETH at 2800"
  trader serve`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute 运行根命令。
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "配置文件路径，默认使用 configs/config.yaml")
}

// bootstrap 完成配置、日志、审计库与应用装配，返回清理函数。
func bootstrap() (*app.App, *zap.Logger, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		return nil, nil, nil, err
	}

	logger, err := log.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		return nil, nil, nil, err
	}

	auditStore, err := store.NewSQLite(cfg.Database)
	if err != nil {
		logger.Error("初始化数据库失败", zap.Error(err))
		return nil, nil, nil, err
	}

	application, err := app.New(cfg, logger, auditStore)
	if err != nil {
		logger.Error("应用装配失败", zap.Error(err))
		_ = auditStore.Close()
		return nil, nil, nil, err
	}

	cleanup := func() {
		if closeErr := auditStore.Close(); closeErr != nil {
			logger.Warn("关闭数据库失败", zap.Error(closeErr))
		}
		_ = logger.Sync()
	}

	return application, logger, cleanup, nil
}
