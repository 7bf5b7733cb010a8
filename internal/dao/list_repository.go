package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/haierkeys/note-feed-service/internal/domain"
	"github.com/haierkeys/note-feed-service/internal/model"
	"github.com/haierkeys/note-feed-service/pkg/timex"
)

// listRepository 实现 domain.ListRepository 接口
type listRepository struct {
	dao *Dao
}

var _ domain.ListRepository = (*listRepository)(nil)

// NewListRepository 创建 ListRepository 实例
func NewListRepository(dao *Dao) domain.ListRepository {
	return &listRepository{dao: dao}
}

func (r *listRepository) toDomain(m *model.List) *domain.List {
	if m == nil {
		return nil
	}
	return &domain.List{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Title:     m.Title,
		Publicity: domain.Publicity(m.Publicity),
		CreatedAt: time.Time(m.CreatedAt),
		UpdatedAt: time.Time(m.UpdatedAt),
	}
}

func (r *listRepository) toModel(l *domain.List) *model.List {
	return &model.List{
		ID:        l.ID,
		OwnerID:   l.OwnerID,
		Title:     l.Title,
		Publicity: string(l.Publicity),
		CreatedAt: timex.Time(l.CreatedAt),
		UpdatedAt: timex.Time(l.UpdatedAt),
	}
}

func (r *listRepository) Create(ctx context.Context, list *domain.List) (*domain.List, error) {
	m := r.toModel(list)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = timex.Now()
	}
	if err := r.dao.DB(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// Update 更新标题与公开性，调用方须先确认列表存在
func (r *listRepository) Update(ctx context.Context, list *domain.List) error {
	updatedAt := timex.Time(list.UpdatedAt)
	if updatedAt.IsZero() {
		updatedAt = timex.Now()
	}
	return r.dao.DB(ctx).Model(&model.List{}).Where("id = ?", list.ID).Updates(map[string]interface{}{
		"title":      list.Title,
		"publicity":  string(list.Publicity),
		"updated_at": updatedAt,
	}).Error
}

func (r *listRepository) FindByID(ctx context.Context, id int64) (*domain.List, error) {
	var m model.List
	if err := r.dao.DB(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// Delete 删除列表及其成员
func (r *listRepository) Delete(ctx context.Context, id int64) error {
	return r.dao.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("list_id = ?", id).Delete(&model.ListMember{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.List{}).Error
	})
}

func (r *listRepository) FindByOwner(ctx context.Context, ownerID int64) ([]*domain.List, error) {
	var ms []*model.List
	if err := r.dao.DB(ctx).Where("owner_id = ?", ownerID).Order("id ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomains(ms), nil
}

func (r *listRepository) AddMember(ctx context.Context, listID, accountID int64) error {
	return r.dao.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.ListMember{ListID: listID, AccountID: accountID, CreatedAt: timex.Now()}).Error
}

func (r *listRepository) RemoveMember(ctx context.Context, listID, accountID int64) error {
	return r.dao.DB(ctx).
		Where("list_id = ? AND account_id = ?", listID, accountID).
		Delete(&model.ListMember{}).Error
}

func (r *listRepository) Members(ctx context.Context, listID int64) ([]int64, error) {
	var ids []int64
	err := r.dao.DB(ctx).Model(&model.ListMember{}).
		Where("list_id = ?", listID).
		Order("account_id ASC").
		Pluck("account_id", &ids).Error
	return ids, err
}

func (r *listRepository) CountMembers(ctx context.Context, listID int64) (int64, error) {
	var n int64
	err := r.dao.DB(ctx).Model(&model.ListMember{}).Where("list_id = ?", listID).Count(&n).Error
	return n, err
}

// FindByMember 获取包含 accountID 的全部列表
func (r *listRepository) FindByMember(ctx context.Context, accountID int64) ([]*domain.List, error) {
	sub := r.dao.DB(ctx).Model(&model.ListMember{}).Select("list_id").Where("account_id = ?", accountID)
	var ms []*model.List
	if err := r.dao.DB(ctx).Where("id IN (?)", sub).Order("id ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomains(ms), nil
}

func (r *listRepository) toDomains(ms []*model.List) []*domain.List {
	out := make([]*domain.List, 0, len(ms))
	for _, m := range ms {
		out = append(out, r.toDomain(m))
	}
	return out
}
