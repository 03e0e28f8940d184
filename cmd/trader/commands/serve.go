package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 服务",
	Long: `启动 REST API 服务。

Endpoints:
  GET  /healthz               - 健康检查
  POST /api/v1/orders         - 结构化下单
  POST /api/v1/instructions   - 自然语言指令下单

Example:
  trader serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	application, logger, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Serve(ctx); err != nil {
		logger.Error("HTTP 服务运行异常", zap.Error(err))
		return err
	}

	logger.Info("系统已安全退出")
	return nil
}
