package api_router

import (
	"github.com/gin-gonic/gin"

	"github.com/haierkeys/note-feed-service/internal/app"
	"github.com/haierkeys/note-feed-service/internal/domain"
	"github.com/haierkeys/note-feed-service/internal/dto"
	pkgapp "github.com/haierkeys/note-feed-service/pkg/app"
	"github.com/haierkeys/note-feed-service/pkg/code"
	"github.com/haierkeys/note-feed-service/pkg/timex"
)

// TimelineHandler 时间线读取处理器
// 所有时间线按 ID 降序返回，nextCursor 作为下一页的 beforeId
type TimelineHandler struct {
	*Handler
}

// NewTimelineHandler 创建 TimelineHandler 实例
func NewTimelineHandler(a *app.App) *TimelineHandler {
	return &TimelineHandler{Handler: NewHandler(a)}
}

// Home 首页时间线（需登录）
func (h *TimelineHandler) Home(c *gin.Context) {
	params := &dto.TimelineRequest{}
	if !h.bind(c, "TimelineHandler.Home", params) {
		return
	}
	notes, err := h.App.TimelineService.FetchHome(c.Request.Context(), pkgapp.GetUID(c), filter(*params))
	h.respondNotes(c, "TimelineHandler.Home", notes, err)
}

// Public 公共时间线，匿名可读
func (h *TimelineHandler) Public(c *gin.Context) {
	params := &dto.TimelineRequest{}
	if !h.bind(c, "TimelineHandler.Public", params) {
		return
	}
	notes, err := h.App.TimelineService.FetchPublic(c.Request.Context(), pkgapp.GetUID(c), filter(*params))
	h.respondNotes(c, "TimelineHandler.Public", notes, err)
}

// Account 某账号发布的笔记，按查看者可见性过滤
func (h *TimelineHandler) Account(c *gin.Context) {
	params := &dto.AccountTimelineRequest{}
	if !h.bind(c, "TimelineHandler.Account", params) {
		return
	}
	notes, err := h.App.TimelineService.FetchAccount(c.Request.Context(), pkgapp.GetUID(c), params.AccountID, filter(params.TimelineRequest))
	h.respondNotes(c, "TimelineHandler.Account", notes, err)
}

// List 列表时间线，私有列表仅所有者可读
func (h *TimelineHandler) List(c *gin.Context) {
	params := &dto.ListTimelineRequest{}
	if !h.bind(c, "TimelineHandler.List", params) {
		return
	}
	notes, err := h.App.TimelineService.FetchList(c.Request.Context(), pkgapp.GetUID(c), params.ListID, filter(params.TimelineRequest))
	h.respondNotes(c, "TimelineHandler.List", notes, err)
}

// Bookmarks 收藏时间线，游标为收藏记录 ID
func (h *TimelineHandler) Bookmarks(c *gin.Context) {
	params := &dto.TimelineRequest{}
	if !h.bind(c, "TimelineHandler.Bookmarks", params) {
		return
	}
	entries, err := h.App.TimelineService.FetchBookmarks(c.Request.Context(), pkgapp.GetUID(c), filter(*params))
	if err != nil {
		h.fail(c, "TimelineHandler.Bookmarks", err)
		return
	}

	list := make([]*dto.BookmarkDTO, 0, len(entries))
	var last int64
	for _, e := range entries {
		note, err := dto.NewNoteDTO(e.Note)
		if err != nil {
			h.fail(c, "TimelineHandler.Bookmarks", code.ErrorServerInternal.WithCause(err))
			return
		}
		list = append(list, &dto.BookmarkDTO{ID: e.Bookmark.ID, CreatedAt: timex.Time(e.Bookmark.CreatedAt), Note: note})
		last = e.Bookmark.ID
	}
	pkgapp.NewResponse(c).ToResponseFeed(code.Success, list, nextCursor(last, len(list)))
}

// Conversation 私信时间线，游标为会话记录 ID
func (h *TimelineHandler) Conversation(c *gin.Context) {
	params := &dto.TimelineRequest{}
	if !h.bind(c, "TimelineHandler.Conversation", params) {
		return
	}
	entries, err := h.App.TimelineService.FetchConversation(c.Request.Context(), pkgapp.GetUID(c), filter(*params))
	if err != nil {
		h.fail(c, "TimelineHandler.Conversation", err)
		return
	}

	list := make([]*dto.ConversationDTO, 0, len(entries))
	var last int64
	for _, e := range entries {
		note, err := dto.NewNoteDTO(e.Note)
		if err != nil {
			h.fail(c, "TimelineHandler.Conversation", code.ErrorServerInternal.WithCause(err))
			return
		}
		list = append(list, &dto.ConversationDTO{ID: e.Entry.ID, PeerID: e.Entry.PeerID, Note: note})
		last = e.Entry.ID
	}
	pkgapp.NewResponse(c).ToResponseFeed(code.Success, list, nextCursor(last, len(list)))
}

func (h *TimelineHandler) respondNotes(c *gin.Context, method string, notes []*domain.Note, err error) {
	if err != nil {
		h.fail(c, method, err)
		return
	}
	list, err := dto.NewNoteDTOs(notes)
	if err != nil {
		h.fail(c, method, code.ErrorServerInternal.WithCause(err))
		return
	}
	var last int64
	if len(notes) > 0 {
		last = notes[len(notes)-1].ID
	}
	pkgapp.NewResponse(c).ToResponseFeed(code.Success, list, nextCursor(last, len(list)))
}

