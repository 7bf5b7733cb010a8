package domain

import "time"

// PartialAccount 关注图返回的账号摘要
type PartialAccount struct {
	ID       int64
	Username string
}

// Follow 关注关系
type Follow struct {
	FollowerID int64
	FolloweeID int64
	CreatedAt  time.Time
}

// AccountIDs 提取账号 ID
func AccountIDs(accounts []PartialAccount) []int64 {
	ids := make([]int64, 0, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.ID)
	}
	return ids
}
