package domain

import (
	"strings"
	"time"

	"github.com/haierkeys/note-feed-service/pkg/code"
)

// Publicity 列表公开性
type Publicity string

const (
	PublicityPublic  Publicity = "PUBLIC"
	PublicityPrivate Publicity = "PRIVATE"
)

// ParsePublicity 忽略大小写解析公开性
func ParsePublicity(s string) (Publicity, error) {
	p := Publicity(strings.ToUpper(strings.TrimSpace(s)))
	switch p {
	case PublicityPublic, PublicityPrivate:
		return p, nil
	}
	return "", code.ErrorListPublicityBad.WithDetails(s)
}

func (p Publicity) Valid() bool {
	return p == PublicityPublic || p == PublicityPrivate
}

// List 用户创建的账号列表
// 成员集合单独存储，见 ListRepository.Members
type List struct {
	ID        int64
	OwnerID   int64
	Title     string
	Publicity Publicity
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOwner 是否为列表所有者
func (l *List) IsOwner(accountID int64) bool {
	return l.OwnerID == accountID
}

// IsPrivate 是否为私有列表
func (l *List) IsPrivate() bool {
	return l.Publicity == PublicityPrivate
}
