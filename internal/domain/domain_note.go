// Package domain 定义领域模型和接口
package domain

import (
	"strings"
	"time"

	"github.com/haierkeys/note-feed-service/pkg/code"
)

// Visibility 笔记可见性
type Visibility string

const (
	// VisibilityPublic 所有人可见
	VisibilityPublic Visibility = "PUBLIC"
	// VisibilityHome 所有人可见，与 PUBLIC 仅在投放位置上区分
	VisibilityHome Visibility = "HOME"
	// VisibilityFollowers 仅作者的关注者可见
	VisibilityFollowers Visibility = "FOLLOWERS"
	// VisibilityDirect 仅 SendTo 指定的账号可见
	VisibilityDirect Visibility = "DIRECT"
)

// Visibilities 返回全部可见性，顺序固定
func Visibilities() []Visibility {
	return []Visibility{VisibilityPublic, VisibilityHome, VisibilityFollowers, VisibilityDirect}
}

// ParseVisibility 忽略大小写解析可见性
func ParseVisibility(s string) (Visibility, error) {
	v := Visibility(strings.ToUpper(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", code.ErrorNoteVisibilityInvalid.WithDetails(s)
	}
	return v, nil
}

// Valid 是否为已知可见性
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityHome, VisibilityFollowers, VisibilityDirect:
		return true
	}
	return false
}

func (v Visibility) String() string {
	return string(v)
}

// Note 笔记领域模型
type Note struct {
	ID         int64
	AuthorID   int64
	Content    string
	Visibility Visibility
	// SendTo DIRECT 笔记的接收者，其它可见性为 0
	SendTo    int64
	RenoteID  int64
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt time.Time
}

// IsDeleted 是否已软删除
func (n *Note) IsDeleted() bool {
	return !n.DeletedAt.IsZero()
}

// IsRenote 是否为转发
func (n *Note) IsRenote() bool {
	return n.RenoteID != 0
}

// Validate 校验可见性与 SendTo 的组合
func (n *Note) Validate() error {
	if !n.Visibility.Valid() {
		return code.ErrorNoteVisibilityInvalid.WithDetails(string(n.Visibility))
	}
	if n.Visibility == VisibilityDirect {
		if n.SendTo <= 0 {
			return code.ErrorNoteDirectNeedsSendTo
		}
		return nil
	}
	if n.SendTo != 0 {
		return code.ErrorNoteSendToNotAllowed
	}
	return nil
}

// Page 基于 ID 游标的分页参数
// BeforeID 为 0 时从最新开始，非 0 时只返回严格小于它的记录
type Page struct {
	BeforeID int64
	Limit    int
}
