package cmd

import (
	"os"

	"go.uber.org/zap"

	"github.com/haierkeys/note-feed-service/pkg/logger"
)

// bootstrapLogger 启动阶段日志器，主日志器就绪前使用（只输出到 stderr）
var bootstrapLogger = newBootstrapLogger()

// FEED_DEBUG 非空时输出 debug 级别
func newBootstrapLogger() *zap.Logger {
	cfg := logger.Config{Level: "info"}
	if os.Getenv("FEED_DEBUG") != "" {
		cfg.Level = "debug"
	}
	lg, err := logger.NewLogger(cfg)
	if err != nil {
		return zap.NewNop()
	}
	return lg.Named("bootstrap")
}
