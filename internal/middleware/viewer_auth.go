package middleware

import (
	"strings"

	"github.com/haierkeys/note-feed-service/pkg/app"
	"github.com/haierkeys/note-feed-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// tokenFromRequest 按顺序读取 Authorization 头、token 头与 token 查询参数
func tokenFromRequest(c *gin.Context) string {
	if s := c.GetHeader("Authorization"); s != "" {
		if rest, ok := strings.CutPrefix(s, "Bearer "); ok {
			return strings.TrimSpace(rest)
		}
		return strings.TrimSpace(s)
	}
	if s := c.GetHeader("token"); s != "" {
		return s
	}
	if s, exist := c.GetQuery("token"); exist {
		return s
	}
	return ""
}

// ViewerAuth 必须携带有效 Token
func ViewerAuth(tm app.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := app.NewResponse(c)

		token := tokenFromRequest(c)
		if token == "" {
			response.ToResponse(code.ErrorNotUserAuthToken)
			c.Abort()
			return
		}

		claims, err := tm.Parse(token)
		if err != nil {
			response.ToResponse(code.ErrorInvalidUserAuthToken)
			c.Abort()
			return
		}
		app.SetViewer(c, claims)

		c.Next()
	}
}

// OptionalViewerAuth 未携带 Token 时以匿名身份继续，携带无效 Token 时拒绝
func OptionalViewerAuth(tm app.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := tm.Parse(token)
		if err != nil {
			app.NewResponse(c).ToResponse(code.ErrorInvalidUserAuthToken)
			c.Abort()
			return
		}
		app.SetViewer(c, claims)

		c.Next()
	}
}
