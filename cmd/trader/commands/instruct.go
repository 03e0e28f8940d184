package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var instructCmd = &cobra.Command{
	Use:   "instruct <自然语言指令>",
	Short: "用自然语言指令下单",
	Long: `驱动完整工作流：解析 → 校验 → 执行 → 摘要。

Example:
  trader instruct "Buy 0.01 BTC at market"
  trader instruct "Short 0.5 ETH at 2800"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInstruct,
}

func init() {
	rootCmd.AddCommand(instructCmd)
}

func runInstruct(cmd *cobra.Command, args []string) error {
	application, logger, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	instruction := strings.Join(args, " ")

	state := application.Workflow().Run(context.Background(), instruction)

	fmt.Println("\n========== WORKFLOW RESULT ==========")
	fmt.Printf("Workflow ID : %s\n", state.ID)
	if state.Result != nil {
		fmt.Printf("Order ID    : %s\n", state.Result.OrderID)
		fmt.Printf("Status      : %s\n", state.Result.Status)
		fmt.Printf("Executed Qty: %s\n", state.Result.ExecutedQty)
	}
	if state.Failure != nil {
		fmt.Printf("Failed Stage: %s\n", state.Failure.Stage)
	}
	fmt.Printf("Summary     : %s\n", state.Summary)
	fmt.Println("=====================================")

	if state.Failure != nil {
		return state.Failure.Err
	}

	if state.Result != nil {
		if auditErr := application.Store().RecordExecution(context.Background(), *state.Result); auditErr != nil {
			logger.Warn("写入执行审计失败", zap.Error(auditErr))
		}
	}

	return nil
}
