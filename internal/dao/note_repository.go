package dao

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/haierkeys/note-feed-service/internal/domain"
	"github.com/haierkeys/note-feed-service/internal/model"
	"github.com/haierkeys/note-feed-service/pkg/timex"
)

// noteRepository 实现 domain.NoteRepository 接口
type noteRepository struct {
	dao *Dao
}

var _ domain.NoteRepository = (*noteRepository)(nil)

// NewNoteRepository 创建 NoteRepository 实例
func NewNoteRepository(dao *Dao) domain.NoteRepository {
	return &noteRepository{dao: dao}
}

func (r *noteRepository) toDomain(m *model.Note) *domain.Note {
	if m == nil {
		return nil
	}
	return &domain.Note{
		ID:         m.ID,
		AuthorID:   m.AuthorID,
		Content:    m.Content,
		Visibility: domain.Visibility(m.Visibility),
		SendTo:     m.SendTo,
		RenoteID:   m.RenoteID,
		CreatedAt:  time.Time(m.CreatedAt),
		UpdatedAt:  time.Time(m.UpdatedAt),
		DeletedAt:  time.Time(m.DeletedAt),
	}
}

func (r *noteRepository) toModel(n *domain.Note) *model.Note {
	if n == nil {
		return nil
	}
	return &model.Note{
		ID:         n.ID,
		AuthorID:   n.AuthorID,
		Content:    n.Content,
		Visibility: string(n.Visibility),
		SendTo:     n.SendTo,
		RenoteID:   n.RenoteID,
		CreatedAt:  timex.Time(n.CreatedAt),
		UpdatedAt:  timex.Time(n.UpdatedAt),
		DeletedAt:  timex.Time(n.DeletedAt),
	}
}

func (r *noteRepository) toDomains(ms []*model.Note) []*domain.Note {
	out := make([]*domain.Note, 0, len(ms))
	for _, m := range ms {
		out = append(out, r.toDomain(m))
	}
	return out
}

func (r *noteRepository) live(ctx context.Context) *gorm.DB {
	return r.dao.DB(ctx).Model(&model.Note{}).Where("deleted_at IS NULL")
}

// FindByID 根据ID获取笔记
func (r *noteRepository) FindByID(ctx context.Context, id int64) (*domain.Note, error) {
	var m model.Note
	if err := r.dao.DB(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// FindByIDs 批量获取，保持入参顺序
func (r *noteRepository) FindByIDs(ctx context.Context, ids []int64) ([]*domain.Note, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var ms []*model.Note
	if err := r.live(ctx).Where("id IN ?", ids).Find(&ms).Error; err != nil {
		return nil, err
	}
	byID := make(map[int64]*model.Note, len(ms))
	for _, m := range ms {
		byID[m.ID] = m
	}
	out := make([]*domain.Note, 0, len(ms))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			out = append(out, r.toDomain(m))
		}
	}
	return out, nil
}

// Create 创建笔记
func (r *noteRepository) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	m := r.toModel(note)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = timex.Now()
	}
	if err := r.dao.DB(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// SoftDelete 标记删除，已删除的笔记保持原删除时间
func (r *noteRepository) SoftDelete(ctx context.Context, id int64) error {
	now := timex.Now()
	return r.live(ctx).Where("id = ?", id).Updates(map[string]interface{}{
		"deleted_at": now,
		"updated_at": now,
	}).Error
}

// FindByAuthor 按作者分页
func (r *noteRepository) FindByAuthor(ctx context.Context, authorID int64, page domain.Page) ([]*domain.Note, error) {
	var ms []*model.Note
	err := r.live(ctx).
		Where("author_id = ? AND visibility <> ?", authorID, string(domain.VisibilityDirect)).
		Scopes(pageScope(page.BeforeID, page.Limit)).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return r.toDomains(ms), nil
}

// FindByAuthors 按多个作者分页
func (r *noteRepository) FindByAuthors(ctx context.Context, authorIDs []int64, page domain.Page) ([]*domain.Note, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	var ms []*model.Note
	err := r.live(ctx).
		Where("author_id IN ? AND visibility <> ?", authorIDs, string(domain.VisibilityDirect)).
		Scopes(pageScope(page.BeforeID, page.Limit)).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return r.toDomains(ms), nil
}

// FindByVisibility 按可见性分页
func (r *noteRepository) FindByVisibility(ctx context.Context, visibilities []domain.Visibility, page domain.Page) ([]*domain.Note, error) {
	if len(visibilities) == 0 {
		return nil, nil
	}
	vs := make([]string, 0, len(visibilities))
	for _, v := range visibilities {
		vs = append(vs, string(v))
	}
	var ms []*model.Note
	err := r.live(ctx).
		Where("visibility IN ?", vs).
		Scopes(pageScope(page.BeforeID, page.Limit)).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return r.toDomains(ms), nil
}
