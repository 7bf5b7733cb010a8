package writequeue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_SerializesPerKey(t *testing.T) {
	m := New(nil, nil)
	defer m.Shutdown(context.Background())

	var (
		mu      sync.Mutex
		running int
		maxSeen int
		count   int
	)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.Execute(context.Background(), 7, func(context.Context) error {
				mu.Lock()
				running++
				if running > maxSeen {
					maxSeen = running
				}
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				running--
				count++
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 20, count)
	assert.Equal(t, 1, m.QueueCount())
}

func TestManager_IndependentKeys(t *testing.T) {
	m := New(nil, nil)
	defer m.Shutdown(context.Background())

	release := make(chan struct{})
	go m.Execute(context.Background(), 1, func(context.Context) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	// key 1 被阻塞时 key 2 仍可执行
	require.NoError(t, m.Execute(ctx, 2, func(context.Context) error { return nil }))
	close(release)
}

func TestManager_ContextCancelled(t *testing.T) {
	m := New(nil, nil)
	defer m.Shutdown(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := m.Execute(ctx, 3, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestManager_ClosedRejects(t *testing.T) {
	m := New(nil, nil)
	require.NoError(t, m.Shutdown(context.Background()))
	assert.ErrorIs(t, m.Execute(context.Background(), 1, func(context.Context) error { return nil }), ErrWriteQueueClosed)
	assert.True(t, m.GetMetrics().IsClosed)
}

func TestManager_ReapIdle(t *testing.T) {
	m := New(&Config{IdleTimeout: time.Hour}, nil)
	defer m.Shutdown(context.Background())

	require.NoError(t, m.Execute(context.Background(), 9, func(context.Context) error { return nil }))
	assert.Equal(t, 0, m.reapIdle(time.Now()))
	assert.Equal(t, 1, m.reapIdle(time.Now().Add(2*time.Hour)))
	assert.Equal(t, 0, m.QueueCount())

	// 回收后同一键可以重新使用
	require.NoError(t, m.Execute(context.Background(), 9, func(context.Context) error { return nil }))
	assert.Equal(t, int64(2), m.GetMetrics().Executed)
}
