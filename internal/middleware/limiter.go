package middleware

import (
	"strconv"

	"github.com/haierkeys/note-feed-service/pkg/app"
	"github.com/haierkeys/note-feed-service/pkg/code"
	"github.com/haierkeys/note-feed-service/pkg/limiter"

	"github.com/gin-gonic/gin"
)

const retryAfterSeconds = 1

// RateLimiter 令牌桶限流，未配置规则的路径不受限制
func RateLimiter(l limiter.Face) gin.HandlerFunc {
	return func(c *gin.Context) {
		bucket, ok := l.GetBucket(l.Key(c))
		if !ok {
			c.Next()
			return
		}
		if bucket.TakeAvailable(1) == 0 {
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
			app.NewResponse(c).ToResponse(code.ErrorTooManyRequests)
			c.Abort()
			return
		}

		c.Next()
	}
}
