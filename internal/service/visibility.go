package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/haierkeys/note-feed-service/internal/domain"
	"github.com/haierkeys/note-feed-service/pkg/logger"
)

// VisibilityEvaluator 判断查看者能否看到笔记
type VisibilityEvaluator interface {
	// IsVisible 关注者查询失败时返回 false
	IsVisible(ctx context.Context, viewerID int64, note *domain.Note) bool

	// IsVisibleWithFollowers 使用已解析的作者关注者集合判断
	IsVisibleWithFollowers(viewerID int64, note *domain.Note, followers map[int64]struct{}) bool
}

type visibilityEvaluator struct {
	graph  domain.FollowGraph
	logger *zap.Logger
	sf     singleflight.Group
}

// NewVisibilityEvaluator 创建可见性判断器
func NewVisibilityEvaluator(graph domain.FollowGraph, lg *zap.Logger) VisibilityEvaluator {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &visibilityEvaluator{graph: graph, logger: lg}
}

func (e *visibilityEvaluator) IsVisible(ctx context.Context, viewerID int64, note *domain.Note) bool {
	if note == nil {
		return false
	}
	if viewerID == note.AuthorID {
		return true
	}

	//exhaustive:enforce
	switch note.Visibility {
	case domain.VisibilityPublic:
		return true
	case domain.VisibilityHome:
		return true
	case domain.VisibilityDirect:
		return viewerID != 0 && viewerID == note.SendTo
	case domain.VisibilityFollowers:
		if viewerID == 0 {
			return false
		}
		followers, err := e.followerSet(ctx, note.AuthorID)
		if err != nil {
			e.logger.Warn("follower lookup failed, note hidden",
				zap.Int64(logger.FieldAuthorID, note.AuthorID),
				zap.Int64(logger.FieldNoteID, note.ID),
				zap.Int64(logger.FieldUID, viewerID),
				zap.Error(err))
			return false
		}
		_, ok := followers[viewerID]
		return ok
	}
	return false
}

func (e *visibilityEvaluator) IsVisibleWithFollowers(viewerID int64, note *domain.Note, followers map[int64]struct{}) bool {
	if note == nil {
		return false
	}
	if viewerID == note.AuthorID {
		return true
	}

	//exhaustive:enforce
	switch note.Visibility {
	case domain.VisibilityPublic:
		return true
	case domain.VisibilityHome:
		return true
	case domain.VisibilityDirect:
		return viewerID != 0 && viewerID == note.SendTo
	case domain.VisibilityFollowers:
		_, ok := followers[viewerID]
		return viewerID != 0 && ok
	}
	return false
}

// followerSet 同一作者的并发查询合并为一次
func (e *visibilityEvaluator) followerSet(ctx context.Context, authorID int64) (map[int64]struct{}, error) {
	v, err := shared(ctx, &e.sf, strconv.FormatInt(authorID, 10), func(ctx context.Context) (interface{}, error) {
		accounts, err := e.graph.FetchFollowers(ctx, authorID)
		if err != nil {
			return nil, err
		}
		return toSet(domain.AccountIDs(accounts)), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[int64]struct{}), nil
}

func toSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// shared 合并同键的并发调用；合并后的调用不随任一调用方取消，
// 每个调用方只按自己的 ctx 放弃等待
func shared(ctx context.Context, g *singleflight.Group, key string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	detached := context.WithoutCancel(ctx)
	ch := g.DoChan(key, func() (interface{}, error) {
		return fn(detached)
	})
	select {
	case r := <-ch:
		return r.Val, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
