package task

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/haierkeys/note-feed-service/internal/app"
	"github.com/haierkeys/note-feed-service/internal/metrics"
	"github.com/haierkeys/note-feed-service/pkg/workerpool"
	"github.com/haierkeys/note-feed-service/pkg/writequeue"
)

func init() {
	Register("RuntimeMetricsTask", NewRuntimeMetricsTask)
}

// RuntimeMetricsTask 定期刷新 worker pool 与写队列的 gauge
type RuntimeMetricsTask struct {
	pool     *workerpool.Pool
	queue    *writequeue.Manager
	metrics  *metrics.Metrics
	schedule cron.Schedule
}

// NewRuntimeMetricsTask 创建运行指标任务，刷新间隔取 app.metrics-interval
func NewRuntimeMetricsTask(a *app.App) (Task, error) {
	return &RuntimeMetricsTask{
		pool:     a.WorkerPool(),
		queue:    a.WriteQueueManager(),
		metrics:  a.Metrics,
		schedule: cron.Every(a.Config().GetMetricsInterval()),
	}, nil
}

func (t *RuntimeMetricsTask) Name() string {
	return "RuntimeMetricsTask"
}

func (t *RuntimeMetricsTask) Run(ctx context.Context) error {
	pm := t.pool.GetMetrics()
	t.metrics.WorkerPoolActive.Set(float64(pm.ActiveCount))
	t.metrics.WorkerPoolQueued.Set(float64(pm.QueuedCount))
	t.metrics.WriteQueueLanes.Set(float64(t.queue.GetMetrics().ActiveQueues))
	return nil
}

func (t *RuntimeMetricsTask) Schedule() cron.Schedule {
	return t.schedule
}

func (t *RuntimeMetricsTask) IsStartupRun() bool {
	return true
}
