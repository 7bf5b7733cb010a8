package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/haierkeys/note-feed-service/internal/domain"
	"github.com/haierkeys/note-feed-service/internal/metrics"
	"github.com/haierkeys/note-feed-service/pkg/code"
	"github.com/haierkeys/note-feed-service/pkg/logger"
	"github.com/haierkeys/note-feed-service/pkg/timeline"
)

// DefaultFanoutConcurrency 单次 Push 的并发写入上限
const DefaultFanoutConcurrency = 64

// FanoutWriter 将笔记写入接收者的时间线
type FanoutWriter interface {
	// Push 计算接收者并写入各自的时间线
	// 所有写入都会尝试，返回第一个失败，已完成的写入不回滚；重复 Push 幂等
	Push(ctx context.Context, note *domain.Note) error

	// Recipients 返回 Push 将写入的时间线键，不做任何写入
	Recipients(ctx context.Context, note *domain.Note) ([]timeline.Key, error)
}

type fanoutWriter struct {
	graph       domain.FollowGraph
	lists       domain.ListRepository
	cache       timeline.Cache
	evaluator   VisibilityEvaluator
	concurrency int
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// FanoutConfig Fan-out 配置
type FanoutConfig struct {
	Concurrency int
}

// NewFanoutWriter 创建 Fan-out 写入器
func NewFanoutWriter(graph domain.FollowGraph, lists domain.ListRepository, cache timeline.Cache,
	evaluator VisibilityEvaluator, cfg FanoutConfig, m *metrics.Metrics, lg *zap.Logger) FanoutWriter {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultFanoutConcurrency
	}
	if m == nil {
		m = metrics.New(nil)
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &fanoutWriter{
		graph:       graph,
		lists:       lists,
		cache:       cache,
		evaluator:   evaluator,
		concurrency: cfg.Concurrency,
		metrics:     m,
		logger:      lg,
	}
}

func (w *fanoutWriter) Recipients(ctx context.Context, note *domain.Note) ([]timeline.Key, error) {
	if note.Visibility == domain.VisibilityDirect {
		return nil, code.ErrorFanoutDirectRejected
	}

	followers, err := w.graph.FetchFollowers(ctx, note.AuthorID)
	if err != nil {
		return nil, code.ErrorFanoutFollowerLookup.WithCause(err)
	}
	followerIDs := domain.AccountIDs(followers)
	followerSet := toSet(followerIDs)

	keys := make([]timeline.Key, 0, len(followerIDs)+1)
	seen := make(map[int64]struct{}, len(followerIDs)+1)
	for _, id := range append([]int64{note.AuthorID}, followerIDs...) {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, timeline.HomeKey(id))
	}

	lists, err := w.lists.FindByMember(ctx, note.AuthorID)
	if err != nil {
		return nil, code.ErrorFanoutFollowerLookup.WithCause(err)
	}
	for _, l := range lists {
		if w.evaluator.IsVisibleWithFollowers(l.OwnerID, note, followerSet) {
			keys = append(keys, timeline.ListKey(l.ID))
		}
	}
	return keys, nil
}

func (w *fanoutWriter) Push(ctx context.Context, note *domain.Note) error {
	start := time.Now()
	keys, err := w.Recipients(ctx, note)
	if err != nil {
		switch {
		case code.KindOf(err) == code.KindInvalidArgument:
			w.metrics.FanoutPushes.WithLabelValues("rejected").Inc()
		default:
			w.metrics.FanoutPushes.WithLabelValues("lookup_failed").Inc()
		}
		return err
	}
	w.metrics.FanoutRecipients.Observe(float64(len(keys)))

	// 不使用 errgroup.WithContext：一个写入失败不取消其它写入
	var g errgroup.Group
	g.SetLimit(w.concurrency)
	for _, key := range keys {
		key := key
		g.Go(func() error {
			if err := w.cache.Append(ctx, key, note.ID); err != nil {
				w.metrics.FanoutWrites.WithLabelValues(string(key.Kind), "error").Inc()
				w.logger.Warn("timeline append failed",
					zap.String(logger.FieldTimeline, key.String()),
					zap.Int64(logger.FieldNoteID, note.ID),
					zap.Error(err))
				return err
			}
			w.metrics.FanoutWrites.WithLabelValues(string(key.Kind), "ok").Inc()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		w.metrics.FanoutPushes.WithLabelValues("write_failed").Inc()
		return code.ErrorFanoutWriteFailed.WithCause(err)
	}

	w.metrics.FanoutPushes.WithLabelValues("ok").Inc()
	w.logger.Debug("note pushed",
		zap.Int64(logger.FieldNoteID, note.ID),
		zap.Int64(logger.FieldAuthorID, note.AuthorID),
		zap.String(logger.FieldVisibility, note.Visibility.String()),
		zap.Int(logger.FieldRecipients, len(keys)),
		zap.Duration(logger.FieldDuration, time.Since(start)))
	return nil
}
