package api_router

import (
	"github.com/gin-gonic/gin"

	"github.com/haierkeys/note-feed-service/internal/app"
	"github.com/haierkeys/note-feed-service/internal/domain"
	"github.com/haierkeys/note-feed-service/internal/dto"
	"github.com/haierkeys/note-feed-service/internal/service"
	pkgapp "github.com/haierkeys/note-feed-service/pkg/app"
	"github.com/haierkeys/note-feed-service/pkg/code"
)

// NoteHandler 笔记 API 路由处理器
// 使用 App Container 注入依赖，支持统一错误处理
type NoteHandler struct {
	*Handler
}

// NewNoteHandler 创建 NoteHandler 实例
func NewNoteHandler(a *app.App) *NoteHandler {
	return &NoteHandler{Handler: NewHandler(a)}
}

// Create 发布笔记
// 非私信笔记在返回前（同步模式）或返回后（异步模式）推送到接收者时间线
func (h *NoteHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteCreateRequest{}
	if !h.bind(c, "NoteHandler.Create", params) {
		return
	}

	var visibility domain.Visibility
	if params.Visibility != "" {
		v, err := domain.ParseVisibility(params.Visibility)
		if err != nil {
			h.fail(c, "NoteHandler.Create", err)
			return
		}
		visibility = v
	}

	note, err := h.App.NoteService.Create(c.Request.Context(), pkgapp.GetUID(c), &service.NoteCreateParams{
		Content:    params.Content,
		Visibility: visibility,
		SendTo:     params.SendTo,
		RenoteID:   params.RenoteID,
	})
	if err != nil && note == nil {
		h.fail(c, "NoteHandler.Create", err)
		return
	}
	if err != nil {
		// 笔记已落库，推送失败只记录，发布者可通过 republish 重新推送
		h.logError(c.Request.Context(), "NoteHandler.Create.Fanout", note.AuthorID, err)
	}

	out, cerr := dto.NewNoteDTO(note)
	if cerr != nil {
		h.fail(c, "NoteHandler.Create", code.ErrorServerInternal.WithCause(cerr))
		return
	}
	response.ToResponse(code.SuccessCreate.WithData(out))
}

// Get 获取单条笔记，查看者不可见时返回无权访问
func (h *NoteHandler) Get(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteIDRequest{}
	if !h.bind(c, "NoteHandler.Get", params) {
		return
	}

	note, err := h.App.NoteService.Get(c.Request.Context(), pkgapp.GetUID(c), params.ID)
	if err != nil {
		h.fail(c, "NoteHandler.Get", err)
		return
	}
	out, err := dto.NewNoteDTO(note)
	if err != nil {
		h.fail(c, "NoteHandler.Get", code.ErrorServerInternal.WithCause(err))
		return
	}
	response.ToResponse(code.Success.WithData(out))
}

// Delete 作者删除笔记（软删除，读取时跳过）
func (h *NoteHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteIDRequest{}
	if !h.bind(c, "NoteHandler.Delete", params) {
		return
	}

	if err := h.App.NoteService.Delete(c.Request.Context(), pkgapp.GetUID(c), params.ID); err != nil {
		h.fail(c, "NoteHandler.Delete", err)
		return
	}
	response.ToResponse(code.SuccessDelete)
}

// Republish 作者重新推送笔记，已在时间线中的接收者不会重复
func (h *NoteHandler) Republish(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteIDRequest{}
	if !h.bind(c, "NoteHandler.Republish", params) {
		return
	}

	if err := h.App.NoteService.Republish(c.Request.Context(), pkgapp.GetUID(c), params.ID); err != nil {
		h.fail(c, "NoteHandler.Republish", err)
		return
	}
	response.ToResponse(code.Success)
}
