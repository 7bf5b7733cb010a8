// Package safe_close 协调多个后台 goroutine 的统一关闭
package safe_close

import (
	"sync"
)

// SafeClose 广播关闭信号并等待所有挂载的 goroutine 退出
type SafeClose struct {
	mu       sync.Mutex
	once     sync.Once
	signal   chan struct{}
	wg       sync.WaitGroup
	closeErr error
}

// NewSafeClose 创建 SafeClose
func NewSafeClose() *SafeClose {
	return &SafeClose{signal: make(chan struct{})}
}

// Attach 启动 fn，fn 在 closeSignal 关闭后须尽快返回并调用 done
func (s *SafeClose) Attach(fn func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	go fn(s.wg.Done, s.signal)
}

// SendCloseSignal 发出关闭信号，只有第一次调用生效，err 记录关闭原因
func (s *SafeClose) SendCloseSignal(err error) {
	s.once.Do(func() {
		s.mu.Lock()
		s.closeErr = err
		s.mu.Unlock()
		close(s.signal)
	})
}

// Done 返回关闭信号 channel
func (s *SafeClose) Done() <-chan struct{} {
	return s.signal
}

// WaitClosed 等待所有挂载的 goroutine 退出，返回关闭原因
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeErr
}
