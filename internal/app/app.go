// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/haierkeys/note-feed-service/internal/dao"
	"github.com/haierkeys/note-feed-service/internal/domain"
	"github.com/haierkeys/note-feed-service/internal/metrics"
	"github.com/haierkeys/note-feed-service/internal/service"
	pkgapp "github.com/haierkeys/note-feed-service/pkg/app"
	"github.com/haierkeys/note-feed-service/pkg/snowflake"
	"github.com/haierkeys/note-feed-service/pkg/timeline"
	"github.com/haierkeys/note-feed-service/pkg/util"
	"github.com/haierkeys/note-feed-service/pkg/workerpool"
	"github.com/haierkeys/note-feed-service/pkg/writequeue"
)

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao

	// 时间线缓存，redis 客户端仅在 cache.type 为 redis 时存在
	Cache timeline.Cache
	redis redis.UniversalClient

	Generator *snowflake.Generator
	Metrics   *metrics.Metrics

	// 并发控制组件
	workerPool    *workerpool.Pool
	writeQueueMgr *writequeue.Manager

	// Repository 层
	NoteRepo         domain.NoteRepository
	FollowGraph      domain.FollowGraph
	ListRepo         domain.ListRepository
	BookmarkRepo     domain.BookmarkRepository
	ConversationRepo domain.ConversationRepository

	// Service 层
	Evaluator       service.VisibilityEvaluator
	Fanout          service.FanoutWriter
	TimelineService service.TimelineService
	NoteService     service.NoteService
	ListService     service.ListService
	FollowService   service.FollowService
	BookmarkService service.BookmarkService

	TokenManager pkgapp.TokenManager

	StartTime time.Time

	shutdownOnce sync.Once
	shutdownCh   chan struct{}
}

// Option App 构建选项
type Option func(*options)

type options struct {
	cache    timeline.Cache
	registry prometheus.Registerer
	clock    snowflake.Clock
}

// WithCache 使用外部提供的时间线缓存，忽略 cache 配置
func WithCache(c timeline.Cache) Option {
	return func(o *options) { o.cache = c }
}

// WithRegistry 指定 prometheus 注册器，默认 prometheus.DefaultRegisterer
func WithRegistry(reg prometheus.Registerer) Option {
	return func(o *options) { o.registry = reg }
}

// WithClock 指定标识生成器时间源
func WithClock(c snowflake.Clock) Option {
	return func(o *options) { o.clock = c }
}

// NewApp 创建应用容器实例
// 初始化所有依赖并进行依赖注入
// cfg: 应用配置（必须）
// logger: zap 日志器（必须）
// db: 数据库连接（必须）
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	o := &options{registry: prometheus.DefaultRegisterer}
	for _, opt := range opts {
		opt(o)
	}

	a := &App{
		config:     cfg,
		logger:     logger,
		DB:         db,
		Metrics:    metrics.New(o.registry),
		StartTime:  time.Now(),
		shutdownCh: make(chan struct{}),
	}

	// 时间线缓存
	if o.cache != nil {
		a.Cache = o.cache
	} else {
		cache, rdb, err := newCache(cfg.Cache)
		if err != nil {
			return nil, err
		}
		a.Cache, a.redis = cache, rdb
	}

	// 标识生成器
	epoch, err := cfg.SnowflakeEpoch()
	if err != nil {
		return nil, err
	}
	a.Generator, err = snowflake.New(snowflake.Config{
		Instance: cfg.SnowflakeInstance(),
		Epoch:    epoch,
		Clock:    o.clock,
	})
	if err != nil {
		return nil, err
	}

	// 初始化 Worker Pool
	wpConfig := cfg.GetWorkerPoolConfig()
	a.workerPool = workerpool.New(&wpConfig, logger)

	// 初始化 Write Queue Manager
	wqConfig := cfg.GetWriteQueueConfig()
	a.writeQueueMgr = writequeue.New(&wqConfig, logger)

	a.Dao = dao.New(db, logger)

	// 初始化 TokenManager
	a.TokenManager = pkgapp.NewTokenManager(pkgapp.TokenConfig{
		SecretKey: cfg.Security.AuthTokenKey,
		Issuer:    util.AppName,
		Expiry:    cfg.GetTokenExpiry(),
	})

	// 初始化 Repository 层
	a.NoteRepo = dao.NewNoteRepository(a.Dao)
	a.FollowGraph = dao.NewFollowGraph(a.Dao)
	a.ListRepo = dao.NewListRepository(a.Dao)
	a.BookmarkRepo = dao.NewBookmarkRepository(a.Dao)
	a.ConversationRepo = dao.NewConversationRepository(a.Dao)

	// 初始化 Service 层（依赖注入）
	a.Evaluator = service.NewVisibilityEvaluator(a.FollowGraph, logger)
	a.Fanout = service.NewFanoutWriter(a.FollowGraph, a.ListRepo, a.Cache, a.Evaluator,
		service.FanoutConfig{Concurrency: cfg.Fanout.Concurrency}, a.Metrics, logger)
	a.TimelineService = service.NewTimelineService(service.TimelineDeps{
		Cache:         a.Cache,
		Notes:         a.NoteRepo,
		Graph:         a.FollowGraph,
		Lists:         a.ListRepo,
		Bookmarks:     a.BookmarkRepo,
		Conversations: a.ConversationRepo,
		Evaluator:     a.Evaluator,
	}, service.TimelineConfig{
		DefaultLimit: cfg.Timeline.DefaultLimit,
		MaxLimit:     cfg.Timeline.MaxLimit,
	}, a.Metrics, logger)
	a.NoteService = service.NewNoteService(service.NoteDeps{
		Notes:         a.NoteRepo,
		Conversations: a.ConversationRepo,
		IDs:           a.Generator,
		Evaluator:     a.Evaluator,
		Fanout:        a.Fanout,
		Pool:          a.workerPool,
	}, service.NoteConfig{
		MaxContentLen: cfg.Note.MaxContentLen,
		AsyncFanout:   cfg.Fanout.Async,
	}, a.Metrics, logger)
	a.ListService = service.NewListService(a.ListRepo, a.Generator, a.writeQueueMgr,
		service.ListConfig{MaxMembers: cfg.List.MaxMembers, MaxTitleLen: cfg.List.MaxTitleLen}, a.Metrics, logger)
	a.FollowService = service.NewFollowService(a.FollowGraph, logger)
	a.BookmarkService = service.NewBookmarkService(a.BookmarkRepo, a.NoteService, a.Generator, a.Metrics)

	logger.Info("App container initialized successfully",
		zap.String("cache", cfg.Cache.Type),
		zap.Int64("snowflakeInstance", a.Generator.Instance()),
		zap.Int("workerPoolMaxWorkers", wpConfig.MaxWorkers),
		zap.Int("writeQueueCapacity", wqConfig.QueueCapacity))

	return a, nil
}

// newCache 根据配置创建时间线缓存
func newCache(cfg CacheConfig) (timeline.Cache, redis.UniversalClient, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "memory":
		return timeline.NewMemoryCache(), nil, nil
	case "redis":
		rdb := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:       cfg.Redis.Addrs,
			Username:    cfg.Redis.Username,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			PoolSize:    cfg.Redis.PoolSize,
			DialTimeout: util.MustParseDuration(cfg.Redis.DialTimeout, 5*time.Second),
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("connect redis %v: %w", cfg.Redis.Addrs, err)
		}
		return timeline.NewRedisCache(rdb, cfg.Redis.Namespace), rdb, nil
	}
	return nil, nil, fmt.Errorf("unsupported cache type %q", cfg.Type)
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Version 获取版本信息
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// WorkerPool 获取 Worker Pool
func (a *App) WorkerPool() *workerpool.Pool {
	return a.workerPool
}

// WriteQueueManager 获取 Write Queue Manager
func (a *App) WriteQueueManager() *writequeue.Manager {
	return a.writeQueueMgr
}

// Ping 检查数据库与缓存连接
func (a *App) Ping(ctx context.Context) (dbErr, cacheErr error) {
	if sqlDB, err := a.DB.DB(); err != nil {
		dbErr = err
	} else {
		dbErr = sqlDB.PingContext(ctx)
	}
	if a.redis != nil {
		cacheErr = a.redis.Ping(ctx).Err()
	}
	return dbErr, cacheErr
}

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown 优雅关闭应用容器
// 按顺序关闭：Worker Pool -> Write Queue Manager -> Redis -> Database
// ctx 为 nil 时使用默认 30 秒超时
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	a.shutdownOnce.Do(func() {
		close(a.shutdownCh)
		a.logger.Info("App container shutting down...")

		if ctx == nil {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
			defer cancel()
		}

		// 1. Worker Pool：停止接受新任务，等待排队中的推送完成
		if err := a.workerPool.Shutdown(ctx); err != nil {
			a.logger.Warn("Worker pool shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("worker pool shutdown: %w", err))
		}

		// 2. Write Queue Manager：排空所有列表写队列
		if err := a.writeQueueMgr.Shutdown(ctx); err != nil {
			a.logger.Warn("write queue manager shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("write queue manager shutdown: %w", err))
		}

		// 3. Redis
		if a.redis != nil {
			if err := a.redis.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close redis: %w", err))
			}
		}

		// 4. 数据库连接
		if sqlDB, err := a.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close database: %w", err))
			}
		}
	})

	if len(errs) > 0 {
		a.logger.Warn("App container shutdown completed with errors", zap.Int("errorCount", len(errs)))
		return fmt.Errorf("shutdown completed with %d errors: %v", len(errs), errs)
	}
	a.logger.Info("App container shutdown completed successfully")
	return nil
}

// IsShuttingDown 检查应用是否正在关闭
func (a *App) IsShuttingDown() bool {
	select {
	case <-a.shutdownCh:
		return true
	default:
		return false
	}
}
