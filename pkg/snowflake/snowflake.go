// Package snowflake generates 64-bit time-sortable identifiers
// Package snowflake 生成 64 位可按时间排序的唯一标识
//
// Layout (MSB -> LSB): 1 sign bit (0) | 41 bits milliseconds since Epoch | 10 bits instance | 12 bits sequence
// 位布局（高 -> 低）：1 位符号（0）| 41 位自 Epoch 起的毫秒数 | 10 位实例号 | 12 位序列号
package snowflake

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"
)

const (
	timestampBits = 41
	instanceBits  = 10
	sequenceBits  = 12

	MaxInstance  = 1<<instanceBits - 1
	MaxSequence  = 1<<sequenceBits - 1
	maxTimestamp = 1<<timestampBits - 1

	instanceShift  = sequenceBits
	timestampShift = sequenceBits + instanceBits
)

// DefaultEpoch 2021-01-01T00:00:00Z
var DefaultEpoch = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

var (
	// ErrExhausted the 12-bit sequence ran out within one millisecond, retry on the next one
	// ErrExhausted 同一毫秒内序列号耗尽，调用方需在下一毫秒重试
	ErrExhausted = errors.New("snowflake: sequence exhausted for current millisecond")
	// ErrClockMovedBackwards the clock reported a time before the last generated timestamp
	// ErrClockMovedBackwards 时钟回拨
	ErrClockMovedBackwards = errors.New("snowflake: clock moved backwards")
	// ErrTimestampOutOfRange time is before the epoch or beyond 41 bits
	// ErrTimestampOutOfRange 时间早于 Epoch 或超出 41 位范围
	ErrTimestampOutOfRange = errors.New("snowflake: timestamp out of range")
	// ErrInvalidInstance instance number is outside 0..1023
	// ErrInvalidInstance 实例号不在 0..1023 之间
	ErrInvalidInstance = errors.New("snowflake: instance out of range")
)

// ID is a generated identifier
// ID 生成的标识
type ID int64

// String renders the decimal form
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Int64 returns the raw value
func (id ID) Int64() int64 {
	return int64(id)
}

// Millis returns the embedded milliseconds relative to the generator epoch
// Millis 返回相对 Epoch 的毫秒数
func (id ID) Millis() int64 {
	return int64(id) >> timestampShift
}

// Instance returns the embedded instance number
func (id ID) Instance() int64 {
	return (int64(id) >> instanceShift) & MaxInstance
}

// Sequence returns the embedded sequence number
func (id ID) Sequence() int64 {
	return int64(id) & MaxSequence
}

// Time converts the embedded timestamp back to wall-clock time for the given epoch
// Time 根据 Epoch 还原生成时间
func (id ID) Time(epoch time.Time) time.Time {
	return epoch.Add(time.Duration(id.Millis()) * time.Millisecond)
}

// ParseID parses the decimal form
// ParseID 解析十进制字符串
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("snowflake: parse id %q: %w", s, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("snowflake: parse id %q: negative", s)
	}
	return ID(v), nil
}

// Clock abstracts the time source so tests can drive the generator
// Clock 时间源抽象，便于测试
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now
type SystemClock struct{}

// Now implements Clock
func (SystemClock) Now() time.Time { return time.Now() }

// Config generator configuration
// Config 生成器配置
type Config struct {
	// Instance 实例号 0..1023
	Instance int64
	// Epoch 自定义纪元，零值时使用 DefaultEpoch
	Epoch time.Time
	// Clock 时间源，nil 时使用 SystemClock
	Clock Clock
}

// Generator produces identifiers for one instance; safe for concurrent use
// Generator 单实例标识生成器，可并发使用
type Generator struct {
	epoch    time.Time
	instance int64
	clock    Clock

	mu       sync.Mutex
	lastMs   int64
	sequence int64
}

// New creates a generator
// New 创建生成器
func New(cfg Config) (*Generator, error) {
	if cfg.Instance < 0 || cfg.Instance > MaxInstance {
		return nil, fmt.Errorf("%w: %d", ErrInvalidInstance, cfg.Instance)
	}
	if cfg.Epoch.IsZero() {
		cfg.Epoch = DefaultEpoch
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	return &Generator{
		epoch:    cfg.Epoch,
		instance: cfg.Instance,
		clock:    cfg.Clock,
		lastMs:   -1,
	}, nil
}

// Epoch returns the configured epoch
func (g *Generator) Epoch() time.Time {
	return g.epoch
}

// Instance returns the configured instance number
func (g *Generator) Instance() int64 {
	return g.instance
}

// Generate returns the next identifier
// Generate 返回下一个标识
// Within one millisecond at most MaxSequence+1 identifiers are issued, then ErrExhausted is returned.
// 同一毫秒内最多生成 MaxSequence+1 个标识，之后返回 ErrExhausted。
func (g *Generator) Generate() (ID, error) {
	now := g.clock.Now()

	g.mu.Lock()
	defer g.mu.Unlock()

	if now.Before(g.epoch) {
		return 0, ErrTimestampOutOfRange
	}
	ms := now.Sub(g.epoch).Milliseconds()
	if ms > maxTimestamp {
		return 0, ErrTimestampOutOfRange
	}

	switch {
	case ms < g.lastMs:
		return 0, fmt.Errorf("%w: %dms", ErrClockMovedBackwards, g.lastMs-ms)
	case ms == g.lastMs:
		if g.sequence >= MaxSequence {
			return 0, ErrExhausted
		}
		g.sequence++
	default:
		g.lastMs = ms
		g.sequence = 0
	}

	return ID(ms<<timestampShift | g.instance<<instanceShift | g.sequence), nil
}

// Compose builds an identifier from its parts; used for cursors and tests
// Compose 由各部分组合标识
func Compose(ms, instance, sequence int64) ID {
	return ID((ms&maxTimestamp)<<timestampShift | (instance&MaxInstance)<<instanceShift | sequence&MaxSequence)
}

// MillisOf returns the embedded milliseconds of a raw identifier
// MillisOf 返回原始 int64 标识内嵌的毫秒数
func MillisOf(id int64) int64 {
	return ID(id).Millis()
}
