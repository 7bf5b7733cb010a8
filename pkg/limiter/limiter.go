// Package limiter 基于令牌桶的接口限流
package limiter

import (
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// Face 限流器接口
type Face interface {
	Key(c *gin.Context) string
	GetBucket(key string) (*ratelimit.Bucket, bool)
	AddBuckets(rules ...BucketRule) Face
}

// BucketRule 令牌桶规则
type BucketRule struct {
	// Key 路由路径，匹配时忽略查询串
	Key string
	// FillInterval 令牌填充间隔
	FillInterval time.Duration
	// Capacity 桶容量
	Capacity int64
	// Quantum 每次填充的令牌数
	Quantum int64
}

// MethodLimiter 按路由路径限流
type MethodLimiter struct {
	mu      sync.RWMutex
	buckets map[string]*ratelimit.Bucket
}

// NewMethodLimiter 创建按路径限流的限流器
func NewMethodLimiter() Face {
	return &MethodLimiter{buckets: make(map[string]*ratelimit.Bucket)}
}

func (l *MethodLimiter) Key(c *gin.Context) string {
	uri := c.Request.RequestURI
	if i := strings.Index(uri, "?"); i >= 0 {
		return uri[:i]
	}
	return uri
}

func (l *MethodLimiter) GetBucket(key string) (*ratelimit.Bucket, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	b, ok := l.buckets[key]
	return b, ok
}

func (l *MethodLimiter) AddBuckets(rules ...BucketRule) Face {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range rules {
		if _, ok := l.buckets[r.Key]; ok {
			continue
		}
		if r.Capacity <= 0 || r.FillInterval <= 0 {
			continue
		}
		quantum := r.Quantum
		if quantum <= 0 {
			quantum = 1
		}
		l.buckets[r.Key] = ratelimit.NewBucketWithQuantum(r.FillInterval, r.Capacity, quantum)
	}
	return l
}
