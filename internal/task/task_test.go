package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haierkeys/note-feed-service/internal/metrics"
	"github.com/haierkeys/note-feed-service/pkg/safe_close"
	"github.com/haierkeys/note-feed-service/pkg/timeline"
)

type fixedDelay time.Duration

func (d fixedDelay) Next(t time.Time) time.Time { return t.Add(time.Duration(d)) }

type countingTask struct {
	runs     atomic.Int32
	startup  bool
	schedule cron.Schedule
	failWith error
	panics   bool
}

func (t *countingTask) Name() string { return "countingTask" }
func (t *countingTask) Run(ctx context.Context) error {
	t.runs.Add(1)
	if t.panics {
		panic("boom")
	}
	return t.failWith
}
func (t *countingTask) Schedule() cron.Schedule { return t.schedule }
func (t *countingTask) IsStartupRun() bool      { return t.startup }

func TestScheduler_RunsOnScheduleUntilClosed(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)
	task := &countingTask{startup: true, schedule: fixedDelay(5 * time.Millisecond), failWith: errors.New("ignored")}
	s.AddTask(task)
	s.Start()

	assert.Eventually(t, func() bool { return task.runs.Load() >= 3 }, time.Second, time.Millisecond)

	sc.SendCloseSignal(nil)
	require.NoError(t, sc.WaitClosed())
	after := task.runs.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, task.runs.Load())
}

func TestScheduler_StartupOnlyAndPanicRecovery(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)
	task := &countingTask{startup: true, panics: true}
	s.AddTask(task)
	s.Start()

	// 无执行计划的任务执行一次后退出，panic 不会扩散
	require.NoError(t, sc.WaitClosed())
	assert.Equal(t, int32(1), task.runs.Load())
}

func TestTimelineTrimTask_KeepsNewest(t *testing.T) {
	ctx := context.Background()
	cache := timeline.NewMemoryCache()
	require.NoError(t, cache.Append(ctx, timeline.HomeKey(1), 1, 2, 3, 4, 5))
	require.NoError(t, cache.Append(ctx, timeline.ListKey(9), 7, 8))
	require.NoError(t, cache.Append(ctx, timeline.HomeKey(2), 6))

	m := metrics.New(nil)
	task := newTimelineTrimTask(cache, 2, fixedDelay(time.Hour), m, nil)
	require.NoError(t, task.Run(ctx))

	home, err := cache.Read(ctx, timeline.HomeKey(1))
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 5}, home)

	list, err := cache.Read(ctx, timeline.ListKey(9))
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 8}, list)

	assert.Equal(t, float64(3), testutil.ToFloat64(m.TimelineTrimmed))
}

type failingTrimCache struct {
	timeline.Cache
}

func (failingTrimCache) Trim(context.Context, timeline.Key, int) error {
	return errors.New("trim refused")
}

func TestTimelineTrimTask_ReportsFailure(t *testing.T) {
	ctx := context.Background()
	cache := timeline.NewMemoryCache()
	require.NoError(t, cache.Append(ctx, timeline.HomeKey(1), 1, 2, 3))

	task := newTimelineTrimTask(failingTrimCache{Cache: cache}, 1, nil, nil, nil)
	assert.EqualError(t, task.Run(ctx), "trim refused")
}
