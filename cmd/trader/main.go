package main

import (
	"errors"
	"os"

	"futures-ai/cmd/trader/commands"
	"futures-ai/internal/order"
)

func main() {
	if err := commands.Execute(); err != nil {
		// 校验失败与执行失败区分退出码，便于脚本判断。
		var validationErr *order.ValidationError
		if errors.As(err, &validationErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
