// Package model 定义数据库模型
package model

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/haierkeys/note-feed-service/pkg/timex"
)

// Note 笔记表
type Note struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	AuthorID   int64      `gorm:"column:author_id;not null;index:idx_note_author_id,priority:1" json:"authorId"`
	Content    string     `gorm:"column:content;type:text;not null" json:"content"`
	Visibility string     `gorm:"column:visibility;size:16;not null;index:idx_note_visibility" json:"visibility"`
	SendTo     int64      `gorm:"column:send_to;not null;default:0" json:"sendTo"`
	RenoteID   int64      `gorm:"column:renote_id;not null;default:0" json:"renoteId"`
	CreatedAt  timex.Time `gorm:"column:created_at;autoCreateTime:false" json:"createdAt"`
	UpdatedAt  timex.Time `gorm:"column:updated_at;default:NULL;autoUpdateTime:false" json:"updatedAt"`
	DeletedAt  timex.Time `gorm:"column:deleted_at;default:NULL;index:idx_note_deleted_at" json:"deletedAt"`
}

// List 列表表
type List struct {
	ID        int64      `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	OwnerID   int64      `gorm:"column:owner_id;not null;index:idx_list_owner_id" json:"ownerId"`
	Title     string     `gorm:"column:title;size:255;not null" json:"title"`
	Publicity string     `gorm:"column:publicity;size:16;not null" json:"publicity"`
	CreatedAt timex.Time `gorm:"column:created_at;autoCreateTime:false" json:"createdAt"`
	UpdatedAt timex.Time `gorm:"column:updated_at;default:NULL;autoUpdateTime:false" json:"updatedAt"`
}

// ListMember 列表成员表
type ListMember struct {
	ListID    int64      `gorm:"column:list_id;primaryKey;autoIncrement:false" json:"listId"`
	AccountID int64      `gorm:"column:account_id;primaryKey;autoIncrement:false;index:idx_list_member_account_id" json:"accountId"`
	CreatedAt timex.Time `gorm:"column:created_at;autoCreateTime:false" json:"createdAt"`
}

// Follow 关注关系表
type Follow struct {
	FollowerID int64      `gorm:"column:follower_id;primaryKey;autoIncrement:false" json:"followerId"`
	FolloweeID int64      `gorm:"column:followee_id;primaryKey;autoIncrement:false;index:idx_follow_followee_id" json:"followeeId"`
	CreatedAt  timex.Time `gorm:"column:created_at;autoCreateTime:false" json:"createdAt"`
}

// Bookmark 收藏表
type Bookmark struct {
	ID        int64      `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	AccountID int64      `gorm:"column:account_id;not null;uniqueIndex:idx_bookmark_account_note,priority:1" json:"accountId"`
	NoteID    int64      `gorm:"column:note_id;not null;uniqueIndex:idx_bookmark_account_note,priority:2" json:"noteId"`
	CreatedAt timex.Time `gorm:"column:created_at;autoCreateTime:false" json:"createdAt"`
}

// ConversationEntry 私信会话表
type ConversationEntry struct {
	ID        int64      `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	AccountID int64      `gorm:"column:account_id;not null;index:idx_conversation_account_id" json:"accountId"`
	NoteID    int64      `gorm:"column:note_id;not null" json:"noteId"`
	PeerID    int64      `gorm:"column:peer_id;not null" json:"peerId"`
	CreatedAt timex.Time `gorm:"column:created_at;autoCreateTime:false" json:"createdAt"`
}

// All 返回全部模型
func All() []interface{} {
	return []interface{}{
		&Note{},
		&List{},
		&ListMember{},
		&Follow{},
		&Bookmark{},
		&ConversationEntry{},
	}
}

// AutoMigrate 迁移全部表结构
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(All()...); err != nil {
		return errors.Wrap(err, "model.AutoMigrate")
	}
	return nil
}
