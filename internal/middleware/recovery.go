package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/haierkeys/note-feed-service/pkg/app"
	"github.com/haierkeys/note-feed-service/pkg/code"
	"github.com/haierkeys/note-feed-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryWithLogger 创建带日志器的 Recovery 中间件（支持依赖注入）
func RecoveryWithLogger(lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			var errorMsg string
			switch v := r.(type) {
			case error:
				errorMsg = v.Error()
			case string:
				errorMsg = v
			default:
				errorMsg = fmt.Sprintf("%v", v)
			}

			lg.Error("recovered from panic",
				zap.String("router", c.Request.URL.Path),
				zap.String(logger.FieldMethod, c.Request.Method),
				zap.String("query", c.Request.URL.RawQuery),
				zap.String("ip", app.GetRequestIP(c)),
				zap.Int64(logger.FieldUID, app.GetUID(c)),
				zap.String(logger.FieldTraceID, GetTraceIDFromGin(c)),
				zap.String("panic", errorMsg),
				zap.String("stack", string(debug.Stack())), // 错误堆栈
			)

			// 返回统一的错误响应
			app.NewResponse(c).ToResponse(code.ErrorServerInternal.WithDetails(errorMsg))
			c.Abort()
		}()

		c.Next()
	}
}
