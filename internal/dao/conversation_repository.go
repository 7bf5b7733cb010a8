package dao

import (
	"context"
	"time"

	"github.com/haierkeys/note-feed-service/internal/domain"
	"github.com/haierkeys/note-feed-service/internal/model"
	"github.com/haierkeys/note-feed-service/pkg/timex"
)

// conversationRepository 实现 domain.ConversationRepository 接口
type conversationRepository struct {
	dao *Dao
}

var _ domain.ConversationRepository = (*conversationRepository)(nil)

// NewConversationRepository 创建 ConversationRepository 实例
func NewConversationRepository(dao *Dao) domain.ConversationRepository {
	return &conversationRepository{dao: dao}
}

// Create 批量写入，同一批在一条 INSERT 中完成
func (r *conversationRepository) Create(ctx context.Context, entries ...*domain.ConversationEntry) error {
	if len(entries) == 0 {
		return nil
	}
	now := timex.Now()
	ms := make([]*model.ConversationEntry, 0, len(entries))
	for _, e := range entries {
		m := &model.ConversationEntry{
			ID:        e.ID,
			AccountID: e.AccountID,
			NoteID:    e.NoteID,
			PeerID:    e.PeerID,
			CreatedAt: timex.Time(e.CreatedAt),
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		ms = append(ms, m)
	}
	return r.dao.DB(ctx).Create(&ms).Error
}

func (r *conversationRepository) FindByAccount(ctx context.Context, accountID int64, page domain.Page) ([]*domain.ConversationEntry, error) {
	var ms []*model.ConversationEntry
	err := r.dao.DB(ctx).Where("account_id = ?", accountID).
		Scopes(pageScope(page.BeforeID, page.Limit)).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.ConversationEntry, 0, len(ms))
	for _, m := range ms {
		out = append(out, &domain.ConversationEntry{
			ID:        m.ID,
			AccountID: m.AccountID,
			NoteID:    m.NoteID,
			PeerID:    m.PeerID,
			CreatedAt: time.Time(m.CreatedAt),
		})
	}
	return out, nil
}
