package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/haierkeys/note-feed-service/internal/domain"
	"github.com/haierkeys/note-feed-service/internal/metrics"
	"github.com/haierkeys/note-feed-service/pkg/code"
	"github.com/haierkeys/note-feed-service/pkg/logger"
)

// FollowService 关注关系写入
// 关注变化只影响之后的推送，已写入的时间线不回溯
type FollowService interface {
	Follow(ctx context.Context, followerID, followeeID int64) error
	Unfollow(ctx context.Context, followerID, followeeID int64) error
}

type followService struct {
	graph  domain.FollowGraph
	logger *zap.Logger
}

func NewFollowService(graph domain.FollowGraph, lg *zap.Logger) FollowService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &followService{graph: graph, logger: lg}
}

func (s *followService) check(followerID, followeeID int64) error {
	if followerID <= 0 {
		return code.ErrorNotUserAuthToken
	}
	if followeeID <= 0 {
		return code.ErrorInvalidParams.WithDetails("accountId is required")
	}
	if followerID == followeeID {
		return code.ErrorFollowSelf
	}
	return nil
}

func (s *followService) Follow(ctx context.Context, followerID, followeeID int64) error {
	if err := s.check(followerID, followeeID); err != nil {
		return err
	}
	if err := s.graph.Follow(ctx, followerID, followeeID); err != nil {
		return code.ErrorDBQuery.WithCause(err)
	}
	s.logger.Debug("follow", zap.Int64(logger.FieldUID, followerID), zap.Int64(logger.FieldAuthorID, followeeID))
	return nil
}

func (s *followService) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	if err := s.check(followerID, followeeID); err != nil {
		return err
	}
	if err := s.graph.Unfollow(ctx, followerID, followeeID); err != nil {
		return code.ErrorDBQuery.WithCause(err)
	}
	return nil
}

// BookmarkService 收藏服务
type BookmarkService interface {
	// Add 收藏一条对账号可见的笔记
	Add(ctx context.Context, accountID, noteID int64) (*domain.Bookmark, error)
	Remove(ctx context.Context, accountID, noteID int64) error
}

type bookmarkService struct {
	repo    domain.BookmarkRepository
	notes   NoteService
	ids     IDGenerator
	metrics *metrics.Metrics
}

func NewBookmarkService(repo domain.BookmarkRepository, notes NoteService, ids IDGenerator, m *metrics.Metrics) BookmarkService {
	if m == nil {
		m = metrics.New(nil)
	}
	return &bookmarkService{repo: repo, notes: notes, ids: ids, metrics: m}
}

func (s *bookmarkService) Add(ctx context.Context, accountID, noteID int64) (*domain.Bookmark, error) {
	if accountID <= 0 {
		return nil, code.ErrorNotUserAuthToken
	}
	if _, err := s.notes.Get(ctx, accountID, noteID); err != nil {
		return nil, err
	}
	id, err := nextID(s.ids, s.metrics)
	if err != nil {
		return nil, err
	}
	b, err := s.repo.Create(ctx, &domain.Bookmark{ID: id, AccountID: accountID, NoteID: noteID})
	if err != nil {
		if errors.Is(err, code.ErrorBookmarkDuplicate) {
			return nil, code.ErrorBookmarkDuplicate
		}
		return nil, code.ErrorDBQuery.WithCause(err)
	}
	return b, nil
}

func (s *bookmarkService) Remove(ctx context.Context, accountID, noteID int64) error {
	if accountID <= 0 {
		return code.ErrorNotUserAuthToken
	}
	if err := s.repo.Delete(ctx, accountID, noteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code.ErrorBookmarkNotFound
		}
		return code.ErrorDBQuery.WithCause(err)
	}
	return nil
}
