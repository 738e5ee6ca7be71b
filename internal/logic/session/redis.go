package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"executor-resolver-sol/internal/pkg/types"

	"github.com/redis/go-redis/v9"
)

// RedisStore 管理 Redis 中的会话状态与计划缓存（多实例共享的幂等控制）
type RedisStore struct {
	rdb *redis.Client
}

// Redis key 前缀
const (
	statusPrefix = "resolver:session:status"
	planPrefix   = "resolver:session:plan"
)

// 各状态的 TTL（可调）
const (
	resolvedTTL = 7 * 24 * time.Hour
	failedTTL   = 10 * time.Minute
	pendingTTL  = time.Minute
	defaultTTL  = 24 * time.Hour
)

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func statusKey(key types.Hash) string {
	return fmt.Sprintf("%s:%s", statusPrefix, key)
}

func planKey(key types.Hash) string {
	return fmt.Sprintf("%s:%s", planPrefix, key)
}

// ttlOf 失败与处理中的状态很快过期，允许重试
func ttlOf(status Status) time.Duration {
	switch status {
	case StatusResolved:
		return resolvedTTL
	case StatusFailed:
		return failedTTL
	case StatusPending:
		return pendingTTL
	default:
		return defaultTTL
	}
}

func (r *RedisStore) GetStatus(ctx context.Context, key types.Hash) (Status, error) {
	val, err := r.rdb.Get(ctx, statusKey(key)).Int()
	switch {
	case errors.Is(err, redis.Nil):
		return StatusUnknown, nil
	case err != nil:
		return StatusUnknown, fmt.Errorf("redis get error: %w", err)
	case val == int(StatusResolved):
		return StatusResolved, nil
	case val == int(StatusFailed):
		return StatusFailed, nil
	case val == int(StatusPending):
		return StatusPending, nil
	default:
		return StatusUnknown, nil // 容错处理
	}
}

func (r *RedisStore) TryMarkPending(ctx context.Context, key types.Hash) (bool, error) {
	ok, err := r.rdb.SetNX(ctx, statusKey(key), int(StatusPending), pendingTTL).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx error: %w", err)
	}
	return ok, nil
}

func (r *RedisStore) MarkStatus(ctx context.Context, key types.Hash, status Status) error {
	return r.rdb.Set(ctx, statusKey(key), int(status), ttlOf(status)).Err()
}

func (r *RedisStore) SavePlan(ctx context.Context, key types.Hash, plan []byte) error {
	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, planKey(key), plan, resolvedTTL)
	pipe.Set(ctx, statusKey(key), int(StatusResolved), resolvedTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save plan error: %w", err)
	}
	return nil
}

func (r *RedisStore) GetPlan(ctx context.Context, key types.Hash) ([]byte, bool, error) {
	val, err := r.rdb.Get(ctx, planKey(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("redis get error: %w", err)
	}
	return val, true, nil
}
