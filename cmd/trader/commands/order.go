package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"futures-ai/internal/order"
)

var (
	orderSymbol   string
	orderSide     string
	orderType     string
	orderQuantity string
	orderPrice    string
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "按表单参数下单",
	Long: `按结构化参数执行一笔订单：校验 → 派发 → 打印执行报告。

Example:
  trader order --symbol BTCUSDT --side BUY --type MARKET --quantity 0.01
  trader order --symbol ETHUSDT --side SELL --type LIMIT --quantity 0.5 --price 2800`,
	RunE: runOrder,
}

func init() {
	rootCmd.AddCommand(orderCmd)

	orderCmd.Flags().StringVar(&orderSymbol, "symbol", "", "交易对符号（如 BTCUSDT）")
	orderCmd.Flags().StringVar(&orderSide, "side", "", "方向 BUY|SELL")
	orderCmd.Flags().StringVar(&orderType, "type", "", "订单类型 MARKET|LIMIT")
	orderCmd.Flags().StringVar(&orderQuantity, "quantity", "", "下单数量")
	orderCmd.Flags().StringVar(&orderPrice, "price", "", "价格（LIMIT 必填）")

	_ = orderCmd.MarkFlagRequired("symbol")
	_ = orderCmd.MarkFlagRequired("side")
	_ = orderCmd.MarkFlagRequired("type")
	_ = orderCmd.MarkFlagRequired("quantity")
}

func runOrder(cmd *cobra.Command, _ []string) error {
	application, logger, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	quantity, err := decimal.NewFromString(orderQuantity)
	if err != nil {
		return fmt.Errorf("quantity 解析失败: %w", err)
	}

	var price *decimal.Decimal
	if orderPrice != "" {
		parsed, parseErr := decimal.NewFromString(orderPrice)
		if parseErr != nil {
			return fmt.Errorf("price 解析失败: %w", parseErr)
		}
		price = &parsed
	}

	symbol := strings.ToUpper(orderSymbol)
	side := strings.ToUpper(orderSide)
	typ := strings.ToUpper(orderType)

	fmt.Println("\n========== ORDER REQUEST ==========")
	fmt.Printf("Symbol     : %s\n", symbol)
	fmt.Printf("Side       : %s\n", side)
	fmt.Printf("Order Type : %s\n", typ)
	fmt.Printf("Quantity   : %s\n", quantity)
	if price != nil {
		fmt.Printf("Price      : %s\n", price)
	} else {
		fmt.Printf("Price      : -\n")
	}
	fmt.Println("===================================")

	result, err := application.Service().Execute(context.Background(), symbol, side, typ, quantity, price)
	if err != nil {
		var validationErr *order.ValidationError
		if errors.As(err, &validationErr) {
			fmt.Printf("❌ 校验失败: %s\n", validationErr.Message)
			return err
		}
		fmt.Printf("❌ 执行失败: %v\n", err)
		return err
	}

	fmt.Println("✅ 订单执行成功")
	fmt.Println("\n========== ORDER RESPONSE ==========")
	fmt.Printf("Order ID     : %s\n", result.OrderID)
	fmt.Printf("Status       : %s\n", result.Status)
	fmt.Printf("Executed Qty : %s\n", result.ExecutedQty)
	fmt.Printf("Avg Price    : %s\n", result.Price)
	fmt.Println("=====================================")

	if auditErr := application.Store().RecordExecution(context.Background(), result); auditErr != nil {
		logger.Warn("写入执行审计失败", zap.Error(auditErr))
	}

	return nil
}
