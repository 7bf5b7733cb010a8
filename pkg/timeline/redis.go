package timeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/haierkeys/note-feed-service/pkg/snowflake"
)

// redisCache sorted-set implementation for multi-instance deployments
// redisCache 基于 Redis 有序集合的实现（多实例部署）
//
// member = note id zero-padded to 19 digits, score = embedded millisecond timestamp
// 成员为补零到 19 位的十进制笔记 ID，分值为内嵌毫秒时间戳
// 定宽成员使同一毫秒内的字典序与数值序一致，Trim 按排名删除时与内存实现一致
type redisCache struct {
	rdb       redis.UniversalClient
	namespace string
}

// NewRedisCache creates a Redis backed cache; namespace is prepended to every key (may be empty)
// NewRedisCache 创建 Redis 缓存，namespace 作为所有键的前缀（可为空）
func NewRedisCache(rdb redis.UniversalClient, namespace string) Cache {
	return &redisCache{rdb: rdb, namespace: namespace}
}

// memberWidth int64 最大值的十进制位数
const memberWidth = 19

func member(id int64) string {
	return fmt.Sprintf("%0*d", memberWidth, id)
}

func (c *redisCache) name(key Key) string {
	return c.namespace + key.String()
}

func (c *redisCache) Append(ctx context.Context, key Key, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]redis.Z, 0, len(ids))
	for _, id := range ids {
		members = append(members, redis.Z{
			Score:  float64(snowflake.MillisOf(id)),
			Member: member(id),
		})
	}
	// ZADD is a set union, concurrent appends to the same key never lose members
	if err := c.rdb.ZAdd(ctx, c.name(key), members...).Err(); err != nil {
		return errors.Wrapf(err, "zadd %s", key)
	}
	return nil
}

func (c *redisCache) Read(ctx context.Context, key Key) ([]int64, error) {
	members, err := c.rdb.ZRange(ctx, c.name(key), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "zrange %s", key)
	}
	// Redis never keeps an empty sorted set, so no members means the key was never populated
	if len(members) == 0 {
		return nil, ErrNotPopulated
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parse member %q of %s", m, key)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (c *redisCache) Trim(ctx context.Context, key Key, keep int) error {
	if keep <= 0 {
		return nil
	}
	if err := c.rdb.ZRemRangeByRank(ctx, c.name(key), 0, int64(-keep-1)).Err(); err != nil {
		return errors.Wrapf(err, "zremrangebyrank %s", key)
	}
	return nil
}

func (c *redisCache) Keys(ctx context.Context, kind Kind) ([]Key, error) {
	pattern := c.namespace + KeyPrefix + ":*"
	if kind != "" {
		pattern = c.namespace + KeyPrefix + ":" + string(kind) + ":*"
	}

	var (
		mu   sync.Mutex
		keys []Key
	)
	scan := func(ctx context.Context, client redis.Cmdable) error {
		iter := client.Scan(ctx, 0, pattern, 500).Iterator()
		for iter.Next(ctx) {
			k, err := ParseKey(strings.TrimPrefix(iter.Val(), c.namespace))
			if err != nil {
				continue
			}
			mu.Lock()
			keys = append(keys, k)
			mu.Unlock()
		}
		return iter.Err()
	}

	// SCAN only walks one node on a cluster, visit every master
	if cc, ok := c.rdb.(*redis.ClusterClient); ok {
		err := cc.ForEachMaster(ctx, func(ctx context.Context, client *redis.Client) error {
			return scan(ctx, client)
		})
		if err != nil {
			return nil, errors.Wrap(err, "scan timeline keys")
		}
		return keys, nil
	}

	if err := scan(ctx, c.rdb); err != nil {
		return nil, errors.Wrap(err, "scan timeline keys")
	}
	return keys, nil
}
