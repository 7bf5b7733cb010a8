package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/haierkeys/note-feed-service/pkg/app"
	"github.com/haierkeys/note-feed-service/pkg/logger"
)

// AccessLogWithLogger 访问日志中间件（使用注入的日志器）
func AccessLogWithLogger(lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		startTime := time.Now()
		c.Next()

		timeCost := time.Since(startTime)

		lg.Info(path,
			zap.String(logger.FieldMethod, c.Request.Method),
			zap.String("url", path+"?"+query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration(logger.FieldDuration, timeCost),
			zap.String("ip", app.GetRequestIP(c)),
			zap.String("user-agent", c.Request.UserAgent()),
			zap.Int64(logger.FieldUID, app.GetUID(c)),
			zap.String(logger.FieldTraceID, GetTraceIDFromGin(c)),
			zap.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()),
		)
	}
}
