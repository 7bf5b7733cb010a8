package dto

import "github.com/haierkeys/note-feed-service/pkg/timex"

// TimelineRequest 时间线分页参数
type TimelineRequest struct {
	BeforeID int64 `form:"beforeId" binding:"gte=0"`
	Limit    int   `form:"limit" binding:"gte=0"`
}

// AccountTimelineRequest 账号时间线参数
type AccountTimelineRequest struct {
	TimelineRequest
	AccountID int64 `form:"accountId" binding:"required,gt=0"`
}

// ListTimelineRequest 列表时间线参数
type ListTimelineRequest struct {
	TimelineRequest
	ListID int64 `form:"listId" binding:"required,gt=0"`
}

// BookmarkDTO 收藏时间线条目，ID 为收藏记录 ID，用作下一页游标
type BookmarkDTO struct {
	ID        int64      `json:"id,string"`
	CreatedAt timex.Time `json:"createdAt"`
	Note      *NoteDTO   `json:"note"`
}

// ConversationDTO 私信时间线条目，ID 为会话记录 ID
type ConversationDTO struct {
	ID     int64    `json:"id,string"`
	PeerID int64    `json:"peerId,string"`
	Note   *NoteDTO `json:"note"`
}

// FollowRequest 关注请求参数
type FollowRequest struct {
	AccountID int64 `json:"accountId,string" form:"accountId" binding:"required,gt=0"`
}

// BookmarkRequest 收藏请求参数
type BookmarkRequest struct {
	NoteID int64 `json:"noteId,string" form:"noteId" binding:"required,gt=0"`
}
