package domain

import "time"

// Bookmark 收藏记录，ID 决定收藏时间线的顺序
type Bookmark struct {
	ID        int64
	AccountID int64
	NoteID    int64
	CreatedAt time.Time
}

// ConversationEntry 私信会话记录
// 每条 DIRECT 笔记为作者和接收者各生成一条
type ConversationEntry struct {
	ID        int64
	AccountID int64
	NoteID    int64
	PeerID    int64
	CreatedAt time.Time
}
