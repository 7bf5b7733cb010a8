package api_router

import (
	"github.com/gin-gonic/gin"

	"github.com/haierkeys/note-feed-service/internal/app"
	"github.com/haierkeys/note-feed-service/internal/dto"
	pkgapp "github.com/haierkeys/note-feed-service/pkg/app"
	"github.com/haierkeys/note-feed-service/pkg/code"
	"github.com/haierkeys/note-feed-service/pkg/timex"
)

// SocialHandler 关注与收藏处理器
type SocialHandler struct {
	*Handler
}

// NewSocialHandler 创建 SocialHandler 实例
func NewSocialHandler(a *app.App) *SocialHandler {
	return &SocialHandler{Handler: NewHandler(a)}
}

// Follow 关注账号，之后发布的笔记推送到当前账号首页
func (h *SocialHandler) Follow(c *gin.Context) {
	params := &dto.FollowRequest{}
	if !h.bind(c, "SocialHandler.Follow", params) {
		return
	}
	if err := h.App.FollowService.Follow(c.Request.Context(), pkgapp.GetUID(c), params.AccountID); err != nil {
		h.fail(c, "SocialHandler.Follow", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success)
}

// Unfollow 取消关注
func (h *SocialHandler) Unfollow(c *gin.Context) {
	params := &dto.FollowRequest{}
	if !h.bind(c, "SocialHandler.Unfollow", params) {
		return
	}
	if err := h.App.FollowService.Unfollow(c.Request.Context(), pkgapp.GetUID(c), params.AccountID); err != nil {
		h.fail(c, "SocialHandler.Unfollow", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success)
}

// Bookmark 收藏当前账号可见的笔记
func (h *SocialHandler) Bookmark(c *gin.Context) {
	params := &dto.BookmarkRequest{}
	if !h.bind(c, "SocialHandler.Bookmark", params) {
		return
	}
	b, err := h.App.BookmarkService.Add(c.Request.Context(), pkgapp.GetUID(c), params.NoteID)
	if err != nil {
		h.fail(c, "SocialHandler.Bookmark", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.SuccessCreate.WithData(&dto.BookmarkDTO{
		ID:        b.ID,
		CreatedAt: timex.Time(b.CreatedAt),
	}))
}

// Unbookmark 取消收藏
func (h *SocialHandler) Unbookmark(c *gin.Context) {
	params := &dto.BookmarkRequest{}
	if !h.bind(c, "SocialHandler.Unbookmark", params) {
		return
	}
	if err := h.App.BookmarkService.Remove(c.Request.Context(), pkgapp.GetUID(c), params.NoteID); err != nil {
		h.fail(c, "SocialHandler.Unbookmark", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.SuccessDelete)
}
