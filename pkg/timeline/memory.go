package timeline

import (
	"context"
	"slices"
	"sync"
)

// memoryCache in-process ordered sets keyed by Key
// memoryCache 进程内有序集合实现
type memoryCache struct {
	mu   sync.RWMutex
	sets map[Key][]int64
}

// NewMemoryCache creates an in-process cache for single-instance deployments and tests
// NewMemoryCache 创建进程内缓存（单实例部署与测试使用）
func NewMemoryCache() Cache {
	return &memoryCache{sets: make(map[Key][]int64)}
}

func (c *memoryCache) Append(ctx context.Context, key Key, ids ...int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	set := c.sets[key]
	for _, id := range ids {
		i, found := slices.BinarySearchFunc(set, id, less)
		if found {
			continue
		}
		set = slices.Insert(set, i, id)
	}
	c.sets[key] = set
	return nil
}

func (c *memoryCache) Read(ctx context.Context, key Key) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	set, ok := c.sets[key]
	if !ok {
		return nil, ErrNotPopulated
	}
	return slices.Clone(set), nil
}

func (c *memoryCache) Trim(ctx context.Context, key Key, keep int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if keep <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	set, ok := c.sets[key]
	if !ok || len(set) <= keep {
		return nil
	}
	c.sets[key] = slices.Clone(set[len(set)-keep:])
	return nil
}

func (c *memoryCache) Keys(ctx context.Context, kind Kind) ([]Key, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]Key, 0, len(c.sets))
	for k := range c.sets {
		if kind == "" || k.Kind == kind {
			keys = append(keys, k)
		}
	}
	return keys, nil
}
