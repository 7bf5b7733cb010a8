package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/haierkeys/note-feed-service/internal/domain"
	"github.com/haierkeys/note-feed-service/internal/metrics"
	"github.com/haierkeys/note-feed-service/pkg/code"
	"github.com/haierkeys/note-feed-service/pkg/logger"
	"github.com/haierkeys/note-feed-service/pkg/writequeue"
)

const (
	DefaultListMaxMembers = 1000
	DefaultListMaxTitle   = 100
)

// ListConfig 列表配置
type ListConfig struct {
	MaxMembers  int
	MaxTitleLen int
}

// ListUpdate 列表编辑参数，nil 字段保持不变
type ListUpdate struct {
	Title     *string
	Publicity *domain.Publicity
}

// ListService 列表注册表
type ListService interface {
	Create(ctx context.Context, ownerID int64, title string, publicity domain.Publicity) (*domain.List, error)
	// Update 编辑标题与公开性，返回时修改已提交
	Update(ctx context.Context, ownerID, listID int64, params ListUpdate) (*domain.List, error)
	// Get 读取列表，私有列表仅所有者可见
	Get(ctx context.Context, viewerID, listID int64) (*domain.List, error)
	Delete(ctx context.Context, ownerID, listID int64) error
	ListOwned(ctx context.Context, ownerID int64) ([]*domain.List, error)
	AddMember(ctx context.Context, ownerID, listID, accountID int64) error
	RemoveMember(ctx context.Context, ownerID, listID, accountID int64) error
	Members(ctx context.Context, viewerID, listID int64) ([]int64, error)
	// FetchSubscribedLists 返回包含 memberID 的列表 ID，升序
	FetchSubscribedLists(ctx context.Context, memberID int64) ([]int64, error)
}

type listService struct {
	repo    domain.ListRepository
	ids     IDGenerator
	queue   *writequeue.Manager
	config  ListConfig
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewListService 创建列表服务
func NewListService(repo domain.ListRepository, ids IDGenerator, queue *writequeue.Manager,
	cfg ListConfig, m *metrics.Metrics, lg *zap.Logger) ListService {
	if cfg.MaxMembers <= 0 {
		cfg.MaxMembers = DefaultListMaxMembers
	}
	if cfg.MaxTitleLen <= 0 {
		cfg.MaxTitleLen = DefaultListMaxTitle
	}
	if m == nil {
		m = metrics.New(nil)
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &listService{repo: repo, ids: ids, queue: queue, config: cfg, metrics: m, logger: lg}
}

func (s *listService) checkTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" || utf8.RuneCountInString(title) > s.config.MaxTitleLen {
		return "", code.ErrorListTitleInvalid
	}
	return title, nil
}

func (s *listService) Create(ctx context.Context, ownerID int64, title string, publicity domain.Publicity) (*domain.List, error) {
	if ownerID <= 0 {
		return nil, code.ErrorNotUserAuthToken
	}
	title, err := s.checkTitle(title)
	if err != nil {
		return nil, err
	}
	if publicity == "" {
		publicity = domain.PublicityPublic
	}
	if !publicity.Valid() {
		return nil, code.ErrorListPublicityBad
	}

	id, err := nextID(s.ids, s.metrics)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.Create(ctx, &domain.List{
		ID:        id,
		OwnerID:   ownerID,
		Title:     title,
		Publicity: publicity,
	})
	if err != nil {
		return nil, code.ErrorListWriteFailed.WithCause(err)
	}
	s.logger.Info("list created",
		zap.Int64(logger.FieldListID, list.ID),
		zap.Int64(logger.FieldUID, ownerID))
	return list, nil
}

func (s *listService) Update(ctx context.Context, ownerID, listID int64, params ListUpdate) (*domain.List, error) {
	if params.Title == nil && params.Publicity == nil {
		return nil, code.ErrorListNothingToEdit
	}
	var title string
	if params.Title != nil {
		t, err := s.checkTitle(*params.Title)
		if err != nil {
			return nil, err
		}
		title = t
	}
	if params.Publicity != nil && !params.Publicity.Valid() {
		return nil, code.ErrorListPublicityBad
	}

	var updated *domain.List
	err := s.serialize(ctx, listID, func(ctx context.Context) error {
		list, err := s.owned(ctx, ownerID, listID)
		if err != nil {
			return err
		}
		if params.Title != nil {
			list.Title = title
		}
		if params.Publicity != nil {
			list.Publicity = *params.Publicity
		}
		if err := s.repo.Update(ctx, list); err != nil {
			return code.ErrorListWriteFailed.WithCause(err)
		}
		updated = list
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *listService) Get(ctx context.Context, viewerID, listID int64) (*domain.List, error) {
	list, err := s.find(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list.IsPrivate() && !list.IsOwner(viewerID) {
		return nil, code.ErrorListPrivate
	}
	return list, nil
}

func (s *listService) Delete(ctx context.Context, ownerID, listID int64) error {
	return s.serialize(ctx, listID, func(ctx context.Context) error {
		if _, err := s.owned(ctx, ownerID, listID); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, listID); err != nil {
			return code.ErrorListWriteFailed.WithCause(err)
		}
		s.logger.Info("list deleted",
			zap.Int64(logger.FieldListID, listID),
			zap.Int64(logger.FieldUID, ownerID))
		return nil
	})
}

func (s *listService) ListOwned(ctx context.Context, ownerID int64) ([]*domain.List, error) {
	if ownerID <= 0 {
		return nil, code.ErrorNotUserAuthToken
	}
	lists, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, code.ErrorDBQuery.WithCause(err)
	}
	return lists, nil
}

func (s *listService) AddMember(ctx context.Context, ownerID, listID, accountID int64) error {
	if accountID <= 0 {
		return code.ErrorInvalidParams.WithDetails("accountId is required")
	}
	return s.serialize(ctx, listID, func(ctx context.Context) error {
		if _, err := s.owned(ctx, ownerID, listID); err != nil {
			return err
		}
		members, err := s.repo.Members(ctx, listID)
		if err != nil {
			return code.ErrorDBQuery.WithCause(err)
		}
		for _, m := range members {
			if m == accountID {
				return nil
			}
		}
		if len(members) >= s.config.MaxMembers {
			return code.ErrorListMembersFull
		}
		if err := s.repo.AddMember(ctx, listID, accountID); err != nil {
			return code.ErrorListWriteFailed.WithCause(err)
		}
		return nil
	})
}

func (s *listService) RemoveMember(ctx context.Context, ownerID, listID, accountID int64) error {
	if accountID <= 0 {
		return code.ErrorInvalidParams.WithDetails("accountId is required")
	}
	return s.serialize(ctx, listID, func(ctx context.Context) error {
		if _, err := s.owned(ctx, ownerID, listID); err != nil {
			return err
		}
		if err := s.repo.RemoveMember(ctx, listID, accountID); err != nil {
			return code.ErrorListWriteFailed.WithCause(err)
		}
		return nil
	})
}

func (s *listService) Members(ctx context.Context, viewerID, listID int64) ([]int64, error) {
	if _, err := s.Get(ctx, viewerID, listID); err != nil {
		return nil, err
	}
	members, err := s.repo.Members(ctx, listID)
	if err != nil {
		return nil, code.ErrorDBQuery.WithCause(err)
	}
	return members, nil
}

func (s *listService) FetchSubscribedLists(ctx context.Context, memberID int64) ([]int64, error) {
	lists, err := s.repo.FindByMember(ctx, memberID)
	if err != nil {
		return nil, code.ErrorDBQuery.WithCause(err)
	}
	ids := make([]int64, 0, len(lists))
	for _, l := range lists {
		ids = append(ids, l.ID)
	}
	return ids, nil
}

func (s *listService) find(ctx context.Context, listID int64) (*domain.List, error) {
	list, err := s.repo.FindByID(ctx, listID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorListNotFound
		}
		return nil, code.ErrorDBQuery.WithCause(err)
	}
	return list, nil
}

// owned 读取列表并确认 ownerID 为所有者
func (s *listService) owned(ctx context.Context, ownerID, listID int64) (*domain.List, error) {
	list, err := s.find(ctx, listID)
	if err != nil {
		return nil, err
	}
	if !list.IsOwner(ownerID) {
		return nil, code.ErrorListNotOwner
	}
	return list, nil
}

// serialize 同一列表的写操作在写队列上串行执行
func (s *listService) serialize(ctx context.Context, listID int64, fn func(context.Context) error) error {
	err := s.queue.Execute(ctx, listID, fn)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, writequeue.ErrWriteQueueFull):
		return code.ErrorListWriteQueueBusy
	case errors.Is(err, writequeue.ErrWriteQueueClosed), errors.Is(err, writequeue.ErrWriteTimeout):
		return code.ErrorListWriteFailed.WithCause(err)
	}
	return err
}
