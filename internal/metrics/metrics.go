// Package metrics 定义时间线引擎的 prometheus 指标
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "note_feed"

// Metrics 时间线引擎指标集合
type Metrics struct {
	// FanoutPushes 按结果统计 Push 调用: ok / rejected / lookup_failed / write_failed
	FanoutPushes *prometheus.CounterVec
	// FanoutWrites 按时间线类型与结果统计单个接收者写入
	FanoutWrites *prometheus.CounterVec
	// FanoutRecipients 每次 Push 的接收者数量
	FanoutRecipients prometheus.Histogram
	// TimelineReads 按 feed 与来源 (cache / store) 统计读取
	TimelineReads *prometheus.CounterVec
	// IDExhausted 序列号耗尽次数
	IDExhausted prometheus.Counter
	// WorkerPoolActive 活跃 worker 数
	WorkerPoolActive prometheus.Gauge
	// WorkerPoolQueued 排队任务数
	WorkerPoolQueued prometheus.Gauge
	// WriteQueueLanes 活跃写队列数
	WriteQueueLanes prometheus.Gauge
	// TimelineTrimmed 维护任务裁剪过的时间线数量
	TimelineTrimmed prometheus.Counter
}

// New 创建指标，reg 为 nil 时不注册
// 重复注册时复用已注册的采集器，配置热重载后仍指向同一组指标
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FanoutPushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "fanout", Name: "pushes_total",
			Help: "Fan-out push calls by result.",
		}, []string{"result"}),
		FanoutWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "fanout", Name: "writes_total",
			Help: "Per-recipient timeline appends by timeline kind and result.",
		}, []string{"kind", "result"}),
		FanoutRecipients: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "fanout", Name: "recipients",
			Help:    "Recipients per push.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		TimelineReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "timeline", Name: "reads_total",
			Help: "Feed reads by feed and source.",
		}, []string{"feed", "source"}),
		IDExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "snowflake", Name: "exhausted_total",
			Help: "ID generation attempts rejected because the sequence was exhausted.",
		}),
		WorkerPoolActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "workerpool", Name: "active",
			Help: "Active worker pool tasks.",
		}),
		WorkerPoolQueued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "workerpool", Name: "queued",
			Help: "Queued worker pool tasks.",
		}),
		WriteQueueLanes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "writequeue", Name: "lanes",
			Help: "Active per-key write queues.",
		}),
		TimelineTrimmed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "timeline", Name: "trimmed_total",
			Help: "Timelines trimmed by the maintenance task.",
		}),
	}
	if reg == nil {
		return m
	}

	m.FanoutPushes = register(reg, m.FanoutPushes)
	m.FanoutWrites = register(reg, m.FanoutWrites)
	m.FanoutRecipients = register(reg, m.FanoutRecipients)
	m.TimelineReads = register(reg, m.TimelineReads)
	m.IDExhausted = register(reg, m.IDExhausted)
	m.WorkerPoolActive = register(reg, m.WorkerPoolActive)
	m.WorkerPoolQueued = register(reg, m.WorkerPoolQueued)
	m.WriteQueueLanes = register(reg, m.WriteQueueLanes)
	m.TimelineTrimmed = register(reg, m.TimelineTrimmed)
	return m
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
