// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/haierkeys/note-feed-service/internal/app"
	pkgapp "github.com/haierkeys/note-feed-service/pkg/app"
	"github.com/haierkeys/note-feed-service/pkg/code"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	*Handler
}

// NewHealthHandler 创建健康检查处理器实例
func NewHealthHandler(a *app.App) *HealthHandler {
	return &HealthHandler{Handler: NewHandler(a)}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status   string  `json:"status"`   // "healthy" 或 "unhealthy"
	Version  string  `json:"version"`  // 服务版本号
	Uptime   float64 `json:"uptime"`   // 运行时间（秒）
	Database string  `json:"database"` // "connected" 或 "error"
	Cache    string  `json:"cache"`    // "memory" / "connected" / "error"
}

// Check 健康检查接口，检查数据库与 redis 连接
func (h *HealthHandler) Check(c *gin.Context) {
	response := HealthResponse{
		Status:   "healthy",
		Version:  h.App.Version().Version,
		Uptime:   time.Since(h.App.StartTime).Seconds(),
		Database: "connected",
		Cache:    "connected",
	}
	if h.App.Config().Cache.Type != "redis" {
		response.Cache = "memory"
	}

	dbErr, cacheErr := h.App.Ping(c.Request.Context())
	if dbErr != nil {
		response.Status = "unhealthy"
		response.Database = "error"
	}
	if cacheErr != nil {
		response.Status = "unhealthy"
		response.Cache = "error"
	}
	if response.Status != "healthy" {
		pkgapp.NewResponse(c).ToResponse(code.Failed.WithData(response))
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(response))
}
