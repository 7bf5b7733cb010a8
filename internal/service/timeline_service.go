package service

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/haierkeys/note-feed-service/internal/domain"
	"github.com/haierkeys/note-feed-service/internal/metrics"
	"github.com/haierkeys/note-feed-service/pkg/code"
	"github.com/haierkeys/note-feed-service/pkg/logger"
	"github.com/haierkeys/note-feed-service/pkg/timeline"
)

const (
	DefaultTimelineLimit    = 20
	DefaultTimelineMaxLimit = 100

	// maxScanRounds 存储回退路径按页扫描的最大轮数，过滤掉的记录过多时提前结束
	maxScanRounds = 8
)

// Filter 时间线分页参数
// BeforeID 非 0 时只返回严格早于它的记录；Limit 非正值取默认值，超出上限截断
type Filter struct {
	BeforeID int64
	Limit    int
}

// TimelineConfig 时间线读取配置
type TimelineConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// BookmarkEntry 收藏时间线条目，Cursor 为收藏记录 ID
type BookmarkEntry struct {
	Bookmark *domain.Bookmark
	Note     *domain.Note
}

// ConversationEntry 私信时间线条目，Cursor 为会话记录 ID
type ConversationEntry struct {
	Entry *domain.ConversationEntry
	Note  *domain.Note
}

// TimelineService 时间线读取服务
// 结果均按时间倒序，已删除或不存在的笔记被跳过
type TimelineService interface {
	FetchHome(ctx context.Context, viewerID int64, f Filter) ([]*domain.Note, error)
	FetchPublic(ctx context.Context, viewerID int64, f Filter) ([]*domain.Note, error)
	FetchAccount(ctx context.Context, viewerID, targetID int64, f Filter) ([]*domain.Note, error)
	FetchList(ctx context.Context, viewerID, listID int64, f Filter) ([]*domain.Note, error)
	FetchBookmarks(ctx context.Context, viewerID int64, f Filter) ([]*BookmarkEntry, error)
	FetchConversation(ctx context.Context, viewerID int64, f Filter) ([]*ConversationEntry, error)
}

type timelineService struct {
	cache         timeline.Cache
	notes         domain.NoteRepository
	graph         domain.FollowGraph
	lists         domain.ListRepository
	bookmarks     domain.BookmarkRepository
	conversations domain.ConversationRepository
	evaluator     VisibilityEvaluator
	config        TimelineConfig
	metrics       *metrics.Metrics
	logger        *zap.Logger
	sf            singleflight.Group
}

// TimelineDeps 时间线服务依赖
type TimelineDeps struct {
	Cache         timeline.Cache
	Notes         domain.NoteRepository
	Graph         domain.FollowGraph
	Lists         domain.ListRepository
	Bookmarks     domain.BookmarkRepository
	Conversations domain.ConversationRepository
	Evaluator     VisibilityEvaluator
}

// NewTimelineService 创建时间线读取服务
func NewTimelineService(deps TimelineDeps, cfg TimelineConfig, m *metrics.Metrics, lg *zap.Logger) TimelineService {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = DefaultTimelineLimit
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = DefaultTimelineMaxLimit
	}
	if cfg.DefaultLimit > cfg.MaxLimit {
		cfg.DefaultLimit = cfg.MaxLimit
	}
	if m == nil {
		m = metrics.New(nil)
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &timelineService{
		cache:         deps.Cache,
		notes:         deps.Notes,
		graph:         deps.Graph,
		lists:         deps.Lists,
		bookmarks:     deps.Bookmarks,
		conversations: deps.Conversations,
		evaluator:     deps.Evaluator,
		config:        cfg,
		metrics:       m,
		logger:        lg,
	}
}

func (s *timelineService) normalize(f Filter) (Filter, error) {
	if f.BeforeID < 0 {
		return f, code.ErrorInvalidParams.WithDetails("beforeId must not be negative")
	}
	if f.Limit <= 0 {
		f.Limit = s.config.DefaultLimit
	}
	if f.Limit > s.config.MaxLimit {
		f.Limit = s.config.MaxLimit
	}
	return f, nil
}

// FetchHome 首页时间线，缓存未建立时回退到关注对象的笔记
func (s *timelineService) FetchHome(ctx context.Context, viewerID int64, f Filter) ([]*domain.Note, error) {
	if viewerID <= 0 {
		return nil, code.ErrorNotUserAuthToken
	}
	f, err := s.normalize(f)
	if err != nil {
		return nil, err
	}

	key := timeline.HomeKey(viewerID)
	notes, err := s.readCached(ctx, key, f)
	if err == nil {
		s.metrics.TimelineReads.WithLabelValues("home", "cache").Inc()
		return notes, nil
	}
	if !errors.Is(err, timeline.ErrNotPopulated) {
		return nil, err
	}

	s.metrics.TimelineReads.WithLabelValues("home", "store").Inc()
	s.logger.Debug("home timeline not populated, reading store",
		zap.Int64(logger.FieldUID, viewerID),
		zap.String(logger.FieldSource, "store"))

	authors, err := s.following(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	authors = append(authors, viewerID)

	return scanPages(ctx, f,
		func(ctx context.Context, p domain.Page) ([]*domain.Note, error) {
			return s.notes.FindByAuthors(ctx, authors, p)
		},
		noteCursor,
		s.visibleTo(viewerID),
	)
}

// FetchPublic 公共时间线，只读存储
func (s *timelineService) FetchPublic(ctx context.Context, viewerID int64, f Filter) ([]*domain.Note, error) {
	f, err := s.normalize(f)
	if err != nil {
		return nil, err
	}
	s.metrics.TimelineReads.WithLabelValues("public", "store").Inc()

	visibilities := []domain.Visibility{domain.VisibilityPublic, domain.VisibilityHome}
	return scanPages(ctx, f,
		func(ctx context.Context, p domain.Page) ([]*domain.Note, error) {
			return s.notes.FindByVisibility(ctx, visibilities, p)
		},
		noteCursor,
		s.visibleTo(viewerID),
	)
}

// FetchAccount 账号时间线，DIRECT 始终排除
func (s *timelineService) FetchAccount(ctx context.Context, viewerID, targetID int64, f Filter) ([]*domain.Note, error) {
	if targetID <= 0 {
		return nil, code.ErrorInvalidParams.WithDetails("accountId is required")
	}
	f, err := s.normalize(f)
	if err != nil {
		return nil, err
	}
	s.metrics.TimelineReads.WithLabelValues("account", "store").Inc()

	return scanPages(ctx, f,
		func(ctx context.Context, p domain.Page) ([]*domain.Note, error) {
			return s.notes.FindByAuthor(ctx, targetID, p)
		},
		noteCursor,
		s.visibleTo(viewerID),
	)
}

// FetchList 列表时间线
// 私有列表仅所有者可读；非所有者读取公开列表时按查看者重新判断可见性
func (s *timelineService) FetchList(ctx context.Context, viewerID, listID int64, f Filter) ([]*domain.Note, error) {
	f, err := s.normalize(f)
	if err != nil {
		return nil, err
	}

	list, err := s.lists.FindByID(ctx, listID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorListNotFound
		}
		return nil, code.ErrorDBQuery.WithCause(err)
	}
	isOwner := list.IsOwner(viewerID)
	if list.IsPrivate() && !isOwner {
		return nil, code.ErrorListPrivate
	}

	notes, err := s.readCached(ctx, timeline.ListKey(list.ID), f)
	if err == nil {
		s.metrics.TimelineReads.WithLabelValues("list", "cache").Inc()
		if isOwner {
			return notes, nil
		}
		return s.visibleTo(viewerID)(ctx, notes)
	}
	if !errors.Is(err, timeline.ErrNotPopulated) {
		return nil, err
	}

	s.metrics.TimelineReads.WithLabelValues("list", "store").Inc()
	members, err := s.lists.Members(ctx, list.ID)
	if err != nil {
		return nil, code.ErrorDBQuery.WithCause(err)
	}
	if len(members) == 0 {
		return []*domain.Note{}, nil
	}

	ownerFilter := s.visibleTo(list.OwnerID)
	viewerFilter := s.visibleTo(viewerID)
	return scanPages(ctx, f,
		func(ctx context.Context, p domain.Page) ([]*domain.Note, error) {
			return s.notes.FindByAuthors(ctx, members, p)
		},
		noteCursor,
		func(ctx context.Context, batch []*domain.Note) ([]*domain.Note, error) {
			kept, err := ownerFilter(ctx, batch)
			if err != nil || isOwner {
				return kept, err
			}
			return viewerFilter(ctx, kept)
		},
	)
}

// FetchBookmarks 收藏时间线，按收藏顺序倒序
func (s *timelineService) FetchBookmarks(ctx context.Context, viewerID int64, f Filter) ([]*BookmarkEntry, error) {
	if viewerID <= 0 {
		return nil, code.ErrorNotUserAuthToken
	}
	f, err := s.normalize(f)
	if err != nil {
		return nil, err
	}
	s.metrics.TimelineReads.WithLabelValues("bookmarks", "store").Inc()

	return scanPages(ctx, f,
		func(ctx context.Context, p domain.Page) ([]*BookmarkEntry, error) {
			bs, err := s.bookmarks.FindByAccount(ctx, viewerID, p)
			if err != nil {
				return nil, code.ErrorDBQuery.WithCause(err)
			}
			out := make([]*BookmarkEntry, 0, len(bs))
			for _, b := range bs {
				out = append(out, &BookmarkEntry{Bookmark: b})
			}
			return out, nil
		},
		func(e *BookmarkEntry) int64 { return e.Bookmark.ID },
		func(ctx context.Context, batch []*BookmarkEntry) ([]*BookmarkEntry, error) {
			ids := make([]int64, 0, len(batch))
			for _, e := range batch {
				ids = append(ids, e.Bookmark.NoteID)
			}
			byID, err := s.hydrate(ctx, ids)
			if err != nil {
				return nil, err
			}
			out := batch[:0]
			for _, e := range batch {
				n, ok := byID[e.Bookmark.NoteID]
				if !ok || !s.evaluator.IsVisible(ctx, viewerID, n) {
					continue
				}
				e.Note = n
				out = append(out, e)
			}
			return out, nil
		},
	)
}

// FetchConversation 私信时间线，按会话记录倒序
func (s *timelineService) FetchConversation(ctx context.Context, viewerID int64, f Filter) ([]*ConversationEntry, error) {
	if viewerID <= 0 {
		return nil, code.ErrorNotUserAuthToken
	}
	f, err := s.normalize(f)
	if err != nil {
		return nil, err
	}
	s.metrics.TimelineReads.WithLabelValues("conversation", "store").Inc()

	return scanPages(ctx, f,
		func(ctx context.Context, p domain.Page) ([]*ConversationEntry, error) {
			es, err := s.conversations.FindByAccount(ctx, viewerID, p)
			if err != nil {
				return nil, code.ErrorDBQuery.WithCause(err)
			}
			out := make([]*ConversationEntry, 0, len(es))
			for _, e := range es {
				out = append(out, &ConversationEntry{Entry: e})
			}
			return out, nil
		},
		func(e *ConversationEntry) int64 { return e.Entry.ID },
		func(ctx context.Context, batch []*ConversationEntry) ([]*ConversationEntry, error) {
			ids := make([]int64, 0, len(batch))
			for _, e := range batch {
				ids = append(ids, e.Entry.NoteID)
			}
			byID, err := s.hydrate(ctx, ids)
			if err != nil {
				return nil, err
			}
			out := batch[:0]
			for _, e := range batch {
				n, ok := byID[e.Entry.NoteID]
				if !ok || !s.evaluator.IsVisible(ctx, viewerID, n) {
					continue
				}
				e.Note = n
				out = append(out, e)
			}
			return out, nil
		},
	)
}

// readCached 从缓存读取一页并按缓存顺序回填笔记
func (s *timelineService) readCached(ctx context.Context, key timeline.Key, f Filter) ([]*domain.Note, error) {
	ids, err := s.cache.Read(ctx, key)
	if err != nil {
		if errors.Is(err, timeline.ErrNotPopulated) {
			return nil, err
		}
		return nil, code.ErrorCacheAccess.WithCause(err)
	}
	page := timeline.Newest(timeline.Before(ids, f.BeforeID), f.Limit)
	if len(page) == 0 {
		return []*domain.Note{}, nil
	}
	notes, err := s.notes.FindByIDs(ctx, page)
	if err != nil {
		return nil, code.ErrorDBQuery.WithCause(err)
	}
	return notes, nil
}

func (s *timelineService) hydrate(ctx context.Context, ids []int64) (map[int64]*domain.Note, error) {
	notes, err := s.notes.FindByIDs(ctx, ids)
	if err != nil {
		return nil, code.ErrorDBQuery.WithCause(err)
	}
	byID := make(map[int64]*domain.Note, len(notes))
	for _, n := range notes {
		if !n.IsDeleted() {
			byID[n.ID] = n
		}
	}
	return byID, nil
}

// following 同一查看者的并发回退读取合并为一次关注查询
func (s *timelineService) following(ctx context.Context, viewerID int64) ([]int64, error) {
	v, err := shared(ctx, &s.sf, "following:"+strconv.FormatInt(viewerID, 10), func(ctx context.Context) (interface{}, error) {
		accounts, err := s.graph.FetchFollowing(ctx, viewerID)
		if err != nil {
			return nil, err
		}
		return domain.AccountIDs(accounts), nil
	})
	if err != nil {
		return nil, code.ErrorFanoutFollowerLookup.WithCause(err)
	}
	ids := v.([]int64)
	return append(make([]int64, 0, len(ids)+1), ids...), nil
}

func (s *timelineService) visibleTo(viewerID int64) func(context.Context, []*domain.Note) ([]*domain.Note, error) {
	return func(ctx context.Context, batch []*domain.Note) ([]*domain.Note, error) {
		out := make([]*domain.Note, 0, len(batch))
		for _, n := range batch {
			if n.IsDeleted() || !s.evaluator.IsVisible(ctx, viewerID, n) {
				continue
			}
			out = append(out, n)
		}
		return out, nil
	}
}

func noteCursor(n *domain.Note) int64 { return n.ID }

// scanPages 按游标逐页读取并过滤，直到凑满 limit、数据读尽或达到扫描轮数上限
func scanPages[T any](
	ctx context.Context,
	f Filter,
	fetch func(context.Context, domain.Page) ([]T, error),
	cursor func(T) int64,
	admit func(context.Context, []T) ([]T, error),
) ([]T, error) {
	out := make([]T, 0, f.Limit)
	before := f.BeforeID
	for round := 0; round < maxScanRounds && len(out) < f.Limit; round++ {
		batch, err := fetch(ctx, domain.Page{BeforeID: before, Limit: f.Limit})
		if err != nil {
			if !isCode(err) {
				return nil, code.ErrorDBQuery.WithCause(err)
			}
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		last := cursor(batch[len(batch)-1])

		kept, err := admit(ctx, batch)
		if err != nil {
			return nil, err
		}
		for _, item := range kept {
			out = append(out, item)
			if len(out) == f.Limit {
				break
			}
		}
		if len(batch) < f.Limit {
			break
		}
		before = last
	}
	return out, nil
}

func isCode(err error) bool {
	var c *code.Code
	return errors.As(err, &c)
}
