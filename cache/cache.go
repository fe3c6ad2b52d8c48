// file: cache/cache.go
package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store 是读穿缓存的抽象：读路径先 Get，未命中则回源重算并 Set，
// 写路径在事务提交后 Invalidate。缓存不可用时退化为"总是重算"，
// 绝不阻塞或回滚业务写入
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string, ttl time.Duration)
	// Invalidate 按前缀批量删除（pattern 形如 "scoreboard:*"）
	Invalidate(pattern string)
}

// RedisStore 基于 redis 的 Store 实现
type RedisStore struct {
	rdb *redis.Client
	ctx context.Context
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, ctx: context.Background()}
}

func (s *RedisStore) Get(key string) (string, bool) {
	val, err := s.rdb.Get(s.ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (s *RedisStore) Set(key, value string, ttl time.Duration) {
	if err := s.rdb.Set(s.ctx, key, value, ttl).Err(); err != nil {
		log.Printf("cache: failed to set %s: %v", key, err)
	}
}

func (s *RedisStore) Invalidate(pattern string) {
	keys, err := s.rdb.Keys(s.ctx, pattern).Result()
	if err != nil {
		log.Printf("cache: failed to list keys for %s: %v", pattern, err)
		return
	}
	if len(keys) > 0 {
		if err := s.rdb.Del(s.ctx, keys...).Err(); err != nil {
			log.Printf("cache: failed to delete %d keys for %s: %v", len(keys), pattern, err)
		}
	}
}
