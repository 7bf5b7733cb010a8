package task

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/haierkeys/note-feed-service/internal/app"
	"github.com/haierkeys/note-feed-service/internal/metrics"
	"github.com/haierkeys/note-feed-service/pkg/logger"
	"github.com/haierkeys/note-feed-service/pkg/timeline"
)

// init 自动注册时间线裁剪任务
func init() {
	Register("TimelineTrimTask", NewTimelineTrimTask)
}

// TimelineTrimTask 按 cron 计划裁剪首页与列表时间线，只保留最新 maxLength 条
type TimelineTrimTask struct {
	cache     timeline.Cache
	maxLength int
	schedule  cron.Schedule
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewTimelineTrimTask 创建裁剪任务，timeline.max-length 为 0 时禁用
func NewTimelineTrimTask(a *app.App) (Task, error) {
	cfg := a.Config().Timeline
	if cfg.MaxLength <= 0 {
		return nil, nil
	}
	schedule, err := cron.ParseStandard(cfg.TrimCron)
	if err != nil {
		return nil, errors.Wrapf(err, "parse timeline.trim-cron %q", cfg.TrimCron)
	}
	return newTimelineTrimTask(a.Cache, cfg.MaxLength, schedule, a.Metrics, a.Logger()), nil
}

func newTimelineTrimTask(cache timeline.Cache, maxLength int, schedule cron.Schedule, m *metrics.Metrics, lg *zap.Logger) *TimelineTrimTask {
	if m == nil {
		m = metrics.New(nil)
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &TimelineTrimTask{cache: cache, maxLength: maxLength, schedule: schedule, metrics: m, logger: lg}
}

// Name 返回任务名称
func (t *TimelineTrimTask) Name() string {
	return "TimelineTrimTask"
}

// Run 遍历所有已填充的时间线并裁剪
// 单个时间线失败不影响其余，返回最后一个错误
func (t *TimelineTrimTask) Run(ctx context.Context) error {
	var lastErr error
	trimmed := 0
	for _, kind := range []timeline.Kind{timeline.KindHome, timeline.KindList} {
		keys, err := t.cache.Keys(ctx, kind)
		if err != nil {
			return errors.Wrapf(err, "list %s timelines", kind)
		}
		for _, key := range keys {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := t.cache.Trim(ctx, key, t.maxLength); err != nil {
				t.logger.Warn("timeline trim failed", zap.String(logger.FieldTimeline, key.String()), zap.Error(err))
				lastErr = err
				continue
			}
			trimmed++
		}
	}
	t.metrics.TimelineTrimmed.Add(float64(trimmed))
	t.logger.Info(t.Name()+" completed", zap.Int("timelines", trimmed), zap.Int("maxLength", t.maxLength))
	return lastErr
}

// Schedule 返回执行计划
func (t *TimelineTrimTask) Schedule() cron.Schedule {
	return t.schedule
}

// IsStartupRun 是否立即执行一次
func (t *TimelineTrimTask) IsStartupRun() bool {
	return false
}
