package credentials

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
)

// KV is the persistence capability behind a Store.
// Implementations may fail; Store swallows and logs those failures.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, keys ...string) error
}

// MemoryKV keeps values in process memory. Used in tests and when no Redis is configured.
type MemoryKV struct {
	mu sync.Mutex
	m  map[string]string

	// Err, when set, is returned by every operation to simulate unavailable storage.
	Err error
}

func NewMemoryKV() *MemoryKV { return &MemoryKV{m: map[string]string{}} }

func (kv *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if kv.Err != nil {
		return "", false, kv.Err
	}
	v, ok := kv.m[key]
	return v, ok, nil
}

func (kv *MemoryKV) Set(_ context.Context, key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if kv.Err != nil {
		return kv.Err
	}
	kv.m[key] = value
	return nil
}

func (kv *MemoryKV) Del(_ context.Context, keys ...string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if kv.Err != nil {
		return kv.Err
	}
	for _, k := range keys {
		delete(kv.m, k)
	}
	return nil
}

// Len reports how many keys are stored.
func (kv *MemoryKV) Len() int {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	return len(kv.m)
}

// RedisKV stores values as plain redis strings without expiry.
type RedisKV struct {
	rdb *redis.Client
}

func NewRedisKV(rdb *redis.Client) *RedisKV { return &RedisKV{rdb: rdb} }

func (kv *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := kv.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (kv *RedisKV) Set(ctx context.Context, key, value string) error {
	return kv.rdb.Set(ctx, key, value, 0).Err()
}

func (kv *RedisKV) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return kv.rdb.Del(ctx, keys...).Err()
}
