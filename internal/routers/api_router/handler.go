// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/haierkeys/note-feed-service/internal/app"
	"github.com/haierkeys/note-feed-service/internal/dto"
	"github.com/haierkeys/note-feed-service/internal/middleware"
	"github.com/haierkeys/note-feed-service/internal/service"
	pkgapp "github.com/haierkeys/note-feed-service/pkg/app"
	"github.com/haierkeys/note-feed-service/pkg/code"
	apperrors "github.com/haierkeys/note-feed-service/pkg/errors"
	"github.com/haierkeys/note-feed-service/pkg/logger"
)

// Handler 基础 Handler 结构体，封装 App Container
// 所有 API Handler 都应该嵌入此结构体以获得依赖注入能力
type Handler struct {
	App *app.App
}

// NewHandler 创建基础 Handler 实例
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

// bind 绑定并校验参数，失败时直接输出参数错误
func (h *Handler) bind(c *gin.Context, method string, params interface{}) bool {
	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Warn(method+".BindAndValid err", zap.Error(errs))
		pkgapp.NewResponse(c).ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return false
	}
	return true
}

// fail 记录服务错误并输出统一错误响应
func (h *Handler) fail(c *gin.Context, method string, err error) {
	h.logError(c.Request.Context(), method, pkgapp.GetUID(c), err)
	apperrors.ErrorResponse(c, err)
}

// logError 记录错误日志，包含 Trace ID
// 业务可预期的错误（参数、权限、不存在）记为 Warn
func (h *Handler) logError(ctx context.Context, method string, uid int64, err error) {
	fields := []zap.Field{
		zap.String(logger.FieldMethod, method),
		zap.Int64(logger.FieldUID, uid),
		zap.Error(err),
	}
	if traceID := middleware.GetTraceID(ctx); traceID != "" {
		fields = append(fields, zap.String(logger.FieldTraceID, traceID))
	}
	if code.KindOf(err) == code.KindUpstreamFailure {
		h.App.Logger().Error(method+" failed", fields...)
		return
	}
	h.App.Logger().Warn(method+" rejected", fields...)
}

// filter 请求参数转为读取过滤条件
func filter(r dto.TimelineRequest) service.Filter {
	return service.Filter{BeforeID: r.BeforeID, Limit: r.Limit}
}

// nextCursor 最后一条的 ID 即下一页游标，空页时返回空串
func nextCursor(lastID int64, n int) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatInt(lastID, 10)
}
