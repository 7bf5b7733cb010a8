// Package writequeue serializes writes that share a key
// Package writequeue 将同一键上的写操作串行化
//
// 列表的元数据修改与成员增删都以列表 ID 为键排队，
// 同一列表的并发修改按 FIFO 顺序执行，成员上限检查与插入之间不会被插队
package writequeue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrWriteQueueFull 当键队列已满时返回
	ErrWriteQueueFull = errors.New("write queue is full")
	// ErrWriteQueueClosed 当管理器已关闭时返回
	ErrWriteQueueClosed = errors.New("write queue is closed")
	// ErrWriteTimeout 当等待写操作结果超时时返回
	ErrWriteTimeout = errors.New("write operation timeout")
)

// Config 写队列配置
type Config struct {
	// QueueCapacity 每个键的队列容量，默认 100
	QueueCapacity int
	// WriteTimeout 单次写操作等待上限，默认 30 秒
	WriteTimeout time.Duration
	// IdleTimeout 空闲键队列回收时间，默认 10 分钟
	IdleTimeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		QueueCapacity: 100,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   10 * time.Minute,
	}
}

type op struct {
	ctx    context.Context
	fn     func(context.Context) error
	result chan error
}

// lane 单个键的串行通道
type lane struct {
	key      int64
	ch       chan op
	lastUsed atomic.Int64
	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

func (l *lane) stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

// Manager 按键管理写队列
type Manager struct {
	config Config
	logger *zap.Logger

	mu     sync.Mutex
	lanes  map[int64]*lane
	closed bool

	executed atomic.Int64
	rejected atomic.Int64

	ctx       context.Context
	cancel    context.CancelFunc
	janitorWg sync.WaitGroup
}

// New 创建写队列管理器
// cfg 为 nil 时使用默认配置；logger 为 nil 时使用 nop logger
func New(cfg *Config, logger *zap.Logger) *Manager {
	c := DefaultConfig()
	if cfg != nil {
		if cfg.QueueCapacity > 0 {
			c.QueueCapacity = cfg.QueueCapacity
		}
		if cfg.WriteTimeout > 0 {
			c.WriteTimeout = cfg.WriteTimeout
		}
		if cfg.IdleTimeout > 0 {
			c.IdleTimeout = cfg.IdleTimeout
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		config: c,
		logger: logger,
		lanes:  make(map[int64]*lane),
		ctx:    ctx,
		cancel: cancel,
	}

	m.janitorWg.Add(1)
	go m.janitor()

	m.logger.Info("write queue manager started",
		zap.Int("queueCapacity", c.QueueCapacity),
		zap.Duration("writeTimeout", c.WriteTimeout),
		zap.Duration("idleTimeout", c.IdleTimeout))

	return m
}

// Execute 在 key 对应的队列上执行 fn 并等待结果
// 同一 key 的操作按提交顺序依次执行
func (m *Manager) Execute(ctx context.Context, key int64, fn func(context.Context) error) error {
	result := make(chan error, 1)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrWriteQueueClosed
	}
	l := m.laneLocked(key)
	select {
	case l.ch <- op{ctx: ctx, fn: fn, result: result}:
	default:
		m.mu.Unlock()
		m.rejected.Add(1)
		return ErrWriteQueueFull
	}
	m.mu.Unlock()

	timeout := m.config.WriteTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrWriteTimeout
	case <-m.ctx.Done():
		return ErrWriteQueueClosed
	}
}

// laneLocked 获取或懒创建 key 的队列，调用方须持有 m.mu
func (m *Manager) laneLocked(key int64) *lane {
	if l, ok := m.lanes[key]; ok {
		l.lastUsed.Store(time.Now().UnixNano())
		return l
	}
	l := &lane{
		key:    key,
		ch:     make(chan op, m.config.QueueCapacity),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	l.lastUsed.Store(time.Now().UnixNano())
	m.lanes[key] = l
	go m.work(l)

	m.logger.Debug("created write queue lane", zap.Int64("key", key))
	return l
}

func (m *Manager) work(l *lane) {
	defer close(l.done)
	for {
		select {
		case o := <-l.ch:
			m.run(l, o)
		case <-l.stopCh:
			// 停止前排空已入队的操作
			for {
				select {
				case o := <-l.ch:
					m.run(l, o)
				default:
					return
				}
			}
		}
	}
}

func (m *Manager) run(l *lane, o op) {
	l.lastUsed.Store(time.Now().UnixNano())
	if err := o.ctx.Err(); err != nil {
		o.result <- err
		return
	}
	m.executed.Add(1)
	o.result <- o.fn(o.ctx)
}

func (m *Manager) janitor() {
	defer m.janitorWg.Done()
	ticker := time.NewTicker(m.config.IdleTimeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.reapIdle(time.Now())
		}
	}
}

// reapIdle 回收空闲且无待处理操作的队列
func (m *Manager) reapIdle(now time.Time) int {
	threshold := m.config.IdleTimeout.Nanoseconds()
	m.mu.Lock()
	defer m.mu.Unlock()

	reaped := 0
	for key, l := range m.lanes {
		if now.UnixNano()-l.lastUsed.Load() > threshold && len(l.ch) == 0 {
			l.stop()
			delete(m.lanes, key)
			reaped++
		}
	}
	if reaped > 0 {
		m.logger.Debug("reaped idle write queue lanes", zap.Int("count", reaped))
	}
	return reaped
}

// Shutdown 停止接收新操作，等待已入队的操作执行完毕
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	lanes := make([]*lane, 0, len(m.lanes))
	for _, l := range m.lanes {
		l.stop()
		lanes = append(lanes, l)
	}
	m.mu.Unlock()

	m.logger.Info("write queue manager shutting down", zap.Int("lanes", len(lanes)))

	done := make(chan struct{})
	go func() {
		for _, l := range lanes {
			<-l.done
		}
		close(done)
	}()

	select {
	case <-done:
		m.cancel()
		m.janitorWg.Wait()
		m.logger.Info("write queue manager shutdown completed")
		return nil
	case <-ctx.Done():
		m.cancel()
		m.logger.Warn("write queue manager shutdown timeout, forcing cancellation")
		return ctx.Err()
	}
}

// QueueCount 返回当前活跃的键队列数量
func (m *Manager) QueueCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lanes)
}

// QueuedCount 返回指定键队列中等待的操作数
func (m *Manager) QueuedCount(key int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.lanes[key]; ok {
		return len(l.ch)
	}
	return 0
}

// Metrics 写队列指标
type Metrics struct {
	QueueCapacity int
	ActiveQueues  int
	Executed      int64
	Rejected      int64
	IsClosed      bool
}

// GetMetrics 获取当前指标
func (m *Manager) GetMetrics() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Metrics{
		QueueCapacity: m.config.QueueCapacity,
		ActiveQueues:  len(m.lanes),
		Executed:      m.executed.Load(),
		Rejected:      m.rejected.Load(),
		IsClosed:      m.closed,
	}
}
