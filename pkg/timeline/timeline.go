// Package timeline provides the per-recipient ordered note ID cache
// Package timeline 提供按接收者划分的有序笔记 ID 缓存
package timeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/haierkeys/note-feed-service/pkg/snowflake"
)

// ErrNotPopulated read on a key that never received an append
// ErrNotPopulated 读取从未写入过的键
var ErrNotPopulated = errors.New("timeline: not populated")

// Kind timeline bucket kind
// Kind 时间线类型
type Kind string

const (
	KindHome Kind = "home"
	KindList Kind = "list"
)

// KeyPrefix prefix of every rendered key
const KeyPrefix = "timeline"

// Key identifies one timeline bucket
// Key 时间线桶标识
type Key struct {
	Kind Kind
	ID   int64
}

// HomeKey home timeline of an account
func HomeKey(accountID int64) Key { return Key{Kind: KindHome, ID: accountID} }

// ListKey list timeline
func ListKey(listID int64) Key { return Key{Kind: KindList, ID: listID} }

// String renders timeline:<kind>:<id>
func (k Key) String() string {
	return KeyPrefix + ":" + string(k.Kind) + ":" + strconv.FormatInt(k.ID, 10)
}

// ParseKey parses timeline:<kind>:<id>; a leading namespace prefix must be stripped by the caller
// ParseKey 解析 timeline:<kind>:<id>
func ParseKey(s string) (Key, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 || parts[0] != KeyPrefix {
		return Key{}, fmt.Errorf("timeline: malformed key %q", s)
	}
	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Key{}, fmt.Errorf("timeline: malformed key %q: %w", s, err)
	}
	return Key{Kind: Kind(parts[1]), ID: id}, nil
}

// Cache is the timeline cache contract
// Cache 时间线缓存约定
//
// Append is additive and deduplicating; an empty append is a no-op and does not populate the key.
// Read returns ids ascending by embedded creation time, or ErrNotPopulated.
// Trim and Keys are maintenance operations and are never called from read paths.
type Cache interface {
	Append(ctx context.Context, key Key, ids ...int64) error
	Read(ctx context.Context, key Key) ([]int64, error)
	Trim(ctx context.Context, key Key, keep int) error
	Keys(ctx context.Context, kind Kind) ([]Key, error)
}

// less orders by embedded millisecond first, then numerically
func less(a, b int64) int {
	if ma, mb := snowflake.MillisOf(a), snowflake.MillisOf(b); ma != mb {
		if ma < mb {
			return -1
		}
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Before keeps ids strictly preceding cursor; ids must be ascending. cursor <= 0 keeps all.
// Before 保留严格早于 cursor 的 id（输入需升序）
func Before(ids []int64, cursor int64) []int64 {
	if cursor <= 0 {
		return ids
	}
	n, _ := slices.BinarySearchFunc(ids, cursor, less)
	return ids[:n]
}

// Newest returns up to limit most recent ids in descending order; ids must be ascending
// Newest 返回最新的 limit 个 id（降序）
func Newest(ids []int64, limit int) []int64 {
	if limit <= 0 || limit > len(ids) {
		limit = len(ids)
	}
	out := make([]int64, 0, limit)
	for i := len(ids) - 1; i >= len(ids)-limit; i-- {
		out = append(out, ids[i])
	}
	return out
}
