package txscript

import (
	"github.com/btcsuite/btclog"
)

// log 是包级日志记录器，默认禁用，调用方通过 UseLogger 启用。
var log btclog.Logger

func init() {
	DisableLog()
}

// DisableLog 禁用所有库日志输出。
func DisableLog() {
	log = btclog.Disabled
}

// UseLogger 使用指定的日志记录器输出包日志。
func UseLogger(logger btclog.Logger) {
	log = logger
}
