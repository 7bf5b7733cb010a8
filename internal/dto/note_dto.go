// Package dto Defines data transfer objects (request parameters and response structs)
// Package dto 定义数据传输对象（请求参数和响应结构体）
//
// 所有 64 位标识在 JSON 中以字符串传输
package dto

import (
	"github.com/haierkeys/note-feed-service/pkg/timex"
)

// NoteDTO 笔记数据传输对象
type NoteDTO struct {
	ID         int64      `json:"id,string"`
	AuthorID   int64      `json:"authorId,string"`
	Content    string     `json:"content"`
	Visibility string     `json:"visibility"`
	SendTo     int64      `json:"sendTo,string,omitempty"`
	RenoteID   int64      `json:"renoteId,string,omitempty"`
	CreatedAt  timex.Time `json:"createdAt"`
}

// NoteCreateRequest 创建笔记请求参数
type NoteCreateRequest struct {
	Content    string `json:"content" form:"content" binding:"max=3000"`
	Visibility string `json:"visibility" form:"visibility" binding:"omitempty,oneofci=PUBLIC HOME FOLLOWERS DIRECT"`
	SendTo     int64  `json:"sendTo,string" form:"sendTo" binding:"gte=0"`
	RenoteID   int64  `json:"renoteId,string" form:"renoteId" binding:"gte=0"`
}

// NoteIDRequest 按 ID 操作笔记的请求参数
type NoteIDRequest struct {
	ID int64 `json:"id,string" form:"id" binding:"required,gt=0"`
}
