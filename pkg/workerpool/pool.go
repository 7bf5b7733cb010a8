// Package workerpool runs background jobs on a fixed set of goroutines
// Package workerpool 在固定数量的 goroutine 上执行后台任务
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// 错误定义
var (
	// ErrWorkerPoolFull 当任务队列已满时返回
	ErrWorkerPoolFull = errors.New("worker pool queue is full")
	// ErrWorkerPoolClosed 当 Worker Pool 已关闭时返回
	ErrWorkerPoolClosed = errors.New("worker pool is closed")
	// ErrTaskCancelled 当任务在执行前被取消时返回
	ErrTaskCancelled = errors.New("task was cancelled")
)

// Config Worker Pool 配置
type Config struct {
	// MaxWorkers 最大并发 worker 数量，默认 16
	MaxWorkers int
	// QueueSize 任务队列大小，默认 1024
	QueueSize int
	// WarningPercent 队列告警阈值百分比，默认 0.8 (80%)
	WarningPercent float64
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		MaxWorkers:     16,
		QueueSize:      1024,
		WarningPercent: 0.8,
	}
}

type job struct {
	ctx  context.Context
	fn   func(context.Context) error
	done chan error
}

// Pool 管理 goroutine 生命周期的 Worker Pool
type Pool struct {
	config Config
	logger *zap.Logger

	jobs     chan job
	workerWg sync.WaitGroup

	active atomic.Int64
	failed atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

// New 创建新的 Worker Pool
// cfg 为 nil 时使用默认配置；logger 为 nil 时使用 nop logger
func New(cfg *Config, logger *zap.Logger) *Pool {
	c := DefaultConfig()
	if cfg != nil {
		if cfg.MaxWorkers > 0 {
			c.MaxWorkers = cfg.MaxWorkers
		}
		if cfg.QueueSize > 0 {
			c.QueueSize = cfg.QueueSize
		}
		if cfg.WarningPercent > 0 && cfg.WarningPercent <= 1 {
			c.WarningPercent = cfg.WarningPercent
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		config: c,
		logger: logger,
		jobs:   make(chan job, c.QueueSize),
		ctx:    ctx,
		cancel: cancel,
	}

	for i := 0; i < c.MaxWorkers; i++ {
		p.workerWg.Add(1)
		go p.worker()
	}

	p.logger.Info("worker pool started",
		zap.Int("maxWorkers", c.MaxWorkers),
		zap.Int("queueSize", c.QueueSize))

	return p
}

func (p *Pool) worker() {
	defer p.workerWg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case j, ok := <-p.jobs:
			if !ok {
				return
			}
			p.run(j)
		}
	}
}

func (p *Pool) run(j job) {
	p.active.Add(1)
	defer p.active.Add(-1)

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("worker pool task panic: %v", r)
				p.logger.Error("worker pool task panic", zap.Any("panic", r), zap.Stack("stack"))
			}
		}()
		select {
		case <-j.ctx.Done():
			err = ErrTaskCancelled
		default:
			err = j.fn(j.ctx)
		}
	}()

	if err != nil {
		p.failed.Add(1)
		if j.done == nil {
			p.logger.Warn("worker pool async task failed", zap.Error(err))
		}
	}
	if j.done != nil {
		j.done <- err
	}
}

func (p *Pool) enqueue(j job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrWorkerPoolClosed
	}

	select {
	case p.jobs <- j:
	default:
		return ErrWorkerPoolFull
	}

	if queued := len(p.jobs); float64(queued) >= float64(p.config.QueueSize)*p.config.WarningPercent {
		p.logger.Warn("worker pool queue approaching capacity",
			zap.Int("queued", queued),
			zap.Int("queueSize", p.config.QueueSize))
	}
	return nil
}

// Submit 提交任务并等待完成
// 返回任务执行结果或错误（池满/已关闭/ctx 取消）
func (p *Pool) Submit(ctx context.Context, fn func(context.Context) error) error {
	done := make(chan error, 1)
	if err := p.enqueue(job{ctx: ctx, fn: fn, done: done}); err != nil {
		return err
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrWorkerPoolClosed
	}
}

// SubmitAsync 异步提交任务（不等待结果），失败仅记录日志
func (p *Pool) SubmitAsync(ctx context.Context, fn func(context.Context) error) error {
	return p.enqueue(job{ctx: ctx, fn: fn})
}

// Shutdown 停止接收任务并等待队列排空
// ctx 超时后强制取消剩余任务
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.logger.Info("worker pool shutting down",
		zap.Int64("active", p.active.Load()),
		zap.Int("queued", len(p.jobs)))

	done := make(chan struct{})
	go func() {
		p.workerWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		p.logger.Info("worker pool shutdown completed")
		return nil
	case <-ctx.Done():
		p.cancel()
		p.logger.Warn("worker pool shutdown timeout, forcing cancellation")
		return ctx.Err()
	}
}

// Metrics Worker Pool 指标
type Metrics struct {
	MaxWorkers    int
	ActiveCount   int64
	FailedCount   int64
	QueuedCount   int
	QueueCapacity int
	IsClosed      bool
}

// GetMetrics 获取当前指标
func (p *Pool) GetMetrics() Metrics {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()

	return Metrics{
		MaxWorkers:    p.config.MaxWorkers,
		ActiveCount:   p.active.Load(),
		FailedCount:   p.failed.Load(),
		QueuedCount:   len(p.jobs),
		QueueCapacity: p.config.QueueSize,
		IsClosed:      closed,
	}
}
