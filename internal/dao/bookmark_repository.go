package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/haierkeys/note-feed-service/internal/domain"
	"github.com/haierkeys/note-feed-service/internal/model"
	"github.com/haierkeys/note-feed-service/pkg/code"
	"github.com/haierkeys/note-feed-service/pkg/timex"
)

// bookmarkRepository 实现 domain.BookmarkRepository 接口
type bookmarkRepository struct {
	dao *Dao
}

var _ domain.BookmarkRepository = (*bookmarkRepository)(nil)

// NewBookmarkRepository 创建 BookmarkRepository 实例
func NewBookmarkRepository(dao *Dao) domain.BookmarkRepository {
	return &bookmarkRepository{dao: dao}
}

func (r *bookmarkRepository) toDomain(m *model.Bookmark) *domain.Bookmark {
	return &domain.Bookmark{
		ID:        m.ID,
		AccountID: m.AccountID,
		NoteID:    m.NoteID,
		CreatedAt: time.Time(m.CreatedAt),
	}
}

func (r *bookmarkRepository) Create(ctx context.Context, b *domain.Bookmark) (*domain.Bookmark, error) {
	m := &model.Bookmark{
		ID:        b.ID,
		AccountID: b.AccountID,
		NoteID:    b.NoteID,
		CreatedAt: timex.Time(b.CreatedAt),
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = timex.Now()
	}

	err := r.dao.Transaction(ctx, func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Bookmark{}).
			Where("account_id = ? AND note_id = ?", b.AccountID, b.NoteID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return code.ErrorBookmarkDuplicate
		}
		return tx.Create(m).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, code.ErrorBookmarkDuplicate
	}
	if err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

func (r *bookmarkRepository) Delete(ctx context.Context, accountID, noteID int64) error {
	res := r.dao.DB(ctx).Where("account_id = ? AND note_id = ?", accountID, noteID).Delete(&model.Bookmark{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *bookmarkRepository) FindByAccount(ctx context.Context, accountID int64, page domain.Page) ([]*domain.Bookmark, error) {
	var ms []*model.Bookmark
	err := r.dao.DB(ctx).Where("account_id = ?", accountID).
		Scopes(pageScope(page.BeforeID, page.Limit)).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Bookmark, 0, len(ms))
	for _, m := range ms {
		out = append(out, r.toDomain(m))
	}
	return out, nil
}
