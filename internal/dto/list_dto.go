package dto

import "github.com/haierkeys/note-feed-service/pkg/timex"

// ListDTO 列表数据传输对象
type ListDTO struct {
	ID        int64      `json:"id,string"`
	OwnerID   int64      `json:"ownerId,string"`
	Title     string     `json:"title"`
	Publicity string     `json:"publicity"`
	CreatedAt timex.Time `json:"createdAt"`
	UpdatedAt timex.Time `json:"updatedAt"`
}

// ListCreateRequest 创建列表请求参数
type ListCreateRequest struct {
	Title     string `json:"title" form:"title" binding:"required,notblank,max=100"`
	Publicity string `json:"publicity" form:"publicity" binding:"omitempty,oneofci=PUBLIC PRIVATE"`
}

// ListUpdateRequest 编辑列表请求参数，未提供的字段保持不变
type ListUpdateRequest struct {
	ID        int64   `json:"id,string" form:"id" binding:"required,gt=0"`
	Title     *string `json:"title" form:"title" binding:"omitempty,notblank,max=100"`
	Publicity *string `json:"publicity" form:"publicity" binding:"omitempty,oneofci=PUBLIC PRIVATE"`
}

// ListIDRequest 按 ID 操作列表的请求参数
type ListIDRequest struct {
	ID int64 `json:"id,string" form:"id" binding:"required,gt=0"`
}

// ListMemberRequest 列表成员变更请求参数
type ListMemberRequest struct {
	ListID    int64 `json:"listId,string" form:"listId" binding:"required,gt=0"`
	AccountID int64 `json:"accountId,string" form:"accountId" binding:"required,gt=0"`
}

// SubscribedListsDTO 包含某账号的列表 ID
type SubscribedListsDTO struct {
	AccountID int64    `json:"accountId,string"`
	ListIDs   []string `json:"listIds"`
}
