package dao

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/haierkeys/note-feed-service/internal/domain"
	"github.com/haierkeys/note-feed-service/internal/model"
	"github.com/haierkeys/note-feed-service/pkg/timex"
)

// followGraph 基于 follow 表实现 domain.FollowGraph
type followGraph struct {
	dao *Dao
}

var _ domain.FollowGraph = (*followGraph)(nil)

// NewFollowGraph 创建 FollowGraph 实例
func NewFollowGraph(dao *Dao) domain.FollowGraph {
	return &followGraph{dao: dao}
}

func (r *followGraph) FetchFollowers(ctx context.Context, accountID int64) ([]domain.PartialAccount, error) {
	var ids []int64
	err := r.dao.DB(ctx).Model(&model.Follow{}).
		Where("followee_id = ?", accountID).
		Order("follower_id ASC").
		Pluck("follower_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return toAccounts(ids), nil
}

func (r *followGraph) FetchFollowing(ctx context.Context, accountID int64) ([]domain.PartialAccount, error) {
	var ids []int64
	err := r.dao.DB(ctx).Model(&model.Follow{}).
		Where("follower_id = ?", accountID).
		Order("followee_id ASC").
		Pluck("followee_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return toAccounts(ids), nil
}

func (r *followGraph) Follow(ctx context.Context, followerID, followeeID int64) error {
	return r.dao.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Follow{FollowerID: followerID, FolloweeID: followeeID, CreatedAt: timex.Now()}).Error
}

func (r *followGraph) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	return r.dao.DB(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&model.Follow{}).Error
}

func toAccounts(ids []int64) []domain.PartialAccount {
	out := make([]domain.PartialAccount, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.PartialAccount{ID: id})
	}
	return out
}
