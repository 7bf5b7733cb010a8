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

// ListHandler 列表 API 路由处理器
type ListHandler struct {
	*Handler
}

// NewListHandler 创建 ListHandler 实例
func NewListHandler(a *app.App) *ListHandler {
	return &ListHandler{Handler: NewHandler(a)}
}

// Create 创建列表，公开性缺省为 PUBLIC
func (h *ListHandler) Create(c *gin.Context) {
	params := &dto.ListCreateRequest{}
	if !h.bind(c, "ListHandler.Create", params) {
		return
	}

	var publicity domain.Publicity
	if params.Publicity != "" {
		p, err := domain.ParsePublicity(params.Publicity)
		if err != nil {
			h.fail(c, "ListHandler.Create", err)
			return
		}
		publicity = p
	}

	l, err := h.App.ListService.Create(c.Request.Context(), pkgapp.GetUID(c), params.Title, publicity)
	h.respondList(c, "ListHandler.Create", code.SuccessCreate, l, err)
}

// Get 获取列表元数据
func (h *ListHandler) Get(c *gin.Context) {
	params := &dto.ListIDRequest{}
	if !h.bind(c, "ListHandler.Get", params) {
		return
	}
	l, err := h.App.ListService.Get(c.Request.Context(), pkgapp.GetUID(c), params.ID)
	h.respondList(c, "ListHandler.Get", code.Success, l, err)
}

// Update 编辑标题或公开性，仅所有者
func (h *ListHandler) Update(c *gin.Context) {
	params := &dto.ListUpdateRequest{}
	if !h.bind(c, "ListHandler.Update", params) {
		return
	}

	update := service.ListUpdate{Title: params.Title}
	if params.Publicity != nil {
		p, err := domain.ParsePublicity(*params.Publicity)
		if err != nil {
			h.fail(c, "ListHandler.Update", err)
			return
		}
		update.Publicity = &p
	}

	l, err := h.App.ListService.Update(c.Request.Context(), pkgapp.GetUID(c), params.ID, update)
	h.respondList(c, "ListHandler.Update", code.SuccessUpdate, l, err)
}

// Delete 删除列表及其成员关系
func (h *ListHandler) Delete(c *gin.Context) {
	params := &dto.ListIDRequest{}
	if !h.bind(c, "ListHandler.Delete", params) {
		return
	}
	if err := h.App.ListService.Delete(c.Request.Context(), pkgapp.GetUID(c), params.ID); err != nil {
		h.fail(c, "ListHandler.Delete", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.SuccessDelete)
}

// Owned 当前账号拥有的列表
func (h *ListHandler) Owned(c *gin.Context) {
	lists, err := h.App.ListService.ListOwned(c.Request.Context(), pkgapp.GetUID(c))
	if err != nil {
		h.fail(c, "ListHandler.Owned", err)
		return
	}
	out, err := dto.NewListDTOs(lists)
	if err != nil {
		h.fail(c, "ListHandler.Owned", code.ErrorServerInternal.WithCause(err))
		return
	}
	pkgapp.NewResponse(c).ToResponseList(code.Success, out, len(out))
}

// AddMember 添加成员，重复添加视为成功
func (h *ListHandler) AddMember(c *gin.Context) {
	params := &dto.ListMemberRequest{}
	if !h.bind(c, "ListHandler.AddMember", params) {
		return
	}
	if err := h.App.ListService.AddMember(c.Request.Context(), pkgapp.GetUID(c), params.ListID, params.AccountID); err != nil {
		h.fail(c, "ListHandler.AddMember", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.SuccessUpdate)
}

// RemoveMember 移除成员
func (h *ListHandler) RemoveMember(c *gin.Context) {
	params := &dto.ListMemberRequest{}
	if !h.bind(c, "ListHandler.RemoveMember", params) {
		return
	}
	if err := h.App.ListService.RemoveMember(c.Request.Context(), pkgapp.GetUID(c), params.ListID, params.AccountID); err != nil {
		h.fail(c, "ListHandler.RemoveMember", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.SuccessDelete)
}

// Members 列表成员账号 ID
func (h *ListHandler) Members(c *gin.Context) {
	params := &dto.ListIDRequest{}
	if !h.bind(c, "ListHandler.Members", params) {
		return
	}
	ids, err := h.App.ListService.Members(c.Request.Context(), pkgapp.GetUID(c), params.ID)
	if err != nil {
		h.fail(c, "ListHandler.Members", err)
		return
	}
	pkgapp.NewResponse(c).ToResponseList(code.Success, dto.FormatIDs(ids), len(ids))
}

// Subscribed 包含当前账号的列表 ID
func (h *ListHandler) Subscribed(c *gin.Context) {
	uid := pkgapp.GetUID(c)
	ids, err := h.App.ListService.FetchSubscribedLists(c.Request.Context(), uid)
	if err != nil {
		h.fail(c, "ListHandler.Subscribed", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(&dto.SubscribedListsDTO{
		AccountID: uid,
		ListIDs:   dto.FormatIDs(ids),
	}))
}

func (h *ListHandler) respondList(c *gin.Context, method string, ok *code.Code, l *domain.List, err error) {
	if err != nil {
		h.fail(c, method, err)
		return
	}
	out, err := dto.NewListDTO(l)
	if err != nil {
		h.fail(c, method, code.ErrorServerInternal.WithCause(err))
		return
	}
	pkgapp.NewResponse(c).ToResponse(ok.WithData(out))
}
