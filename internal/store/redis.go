package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"executor-resolver-sol/internal/accounts"
	"executor-resolver-sol/internal/pkg/types"

	"github.com/near/borsh-go"
	"github.com/redis/go-redis/v9"
)

// Redis key 前缀
const accountPrefix = "resolver:account"

// 账户状态默认保留时间，过期后回落到链上数据
const defaultAccountTTL = 24 * time.Hour

// RedisLedger 以 Redis 保存账户状态，多个 relayer 实例共享（提交模式下的结果账户、示例程序种子数据）
type RedisLedger struct {
	rdb *redis.Client
	ttl time.Duration
}

// redisAccount Redis 中的账户编码（borsh）
type redisAccount struct {
	Lamports   uint64
	Owner      [32]byte
	Executable bool
	Data       []byte
}

// NewRedisLedger ttl <= 0 时使用默认 TTL
func NewRedisLedger(rdb *redis.Client, ttl time.Duration) *RedisLedger {
	if ttl <= 0 {
		ttl = defaultAccountTTL
	}
	return &RedisLedger{rdb: rdb, ttl: ttl}
}

func (r *RedisLedger) getKey(k types.Pubkey) string {
	return fmt.Sprintf("%s:%s", accountPrefix, k)
}

func (r *RedisLedger) GetAccounts(ctx context.Context, keys []types.Pubkey) ([]*accounts.AccountInfo, error) {
	out := make([]*accounts.AccountInfo, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	redisKeys := make([]string, len(keys))
	for i, k := range keys {
		redisKeys[i] = r.getKey(k)
	}

	vals, err := r.rdb.MGet(ctx, redisKeys...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis mget error: %w", err)
	}
	for i, k := range keys {
		out[i] = emptyAccount(k)
		if i >= len(vals) || vals[i] == nil {
			continue
		}
		raw, ok := vals[i].(string)
		if !ok {
			return nil, fmt.Errorf("redis value for %s has type %T", k, vals[i])
		}
		a, err := decodeRedisAccount(k, []byte(raw))
		if err != nil {
			return nil, err
		}
		out[i] = a
	}
	return out, nil
}

func (r *RedisLedger) PutAccounts(ctx context.Context, list ...*accounts.AccountInfo) error {
	if len(list) == 0 {
		return nil
	}
	pipe := r.rdb.TxPipeline()
	for _, a := range list {
		val, err := borsh.Serialize(redisAccount{
			Lamports:   a.Lamports,
			Owner:      a.Owner,
			Executable: a.Executable,
			Data:       a.Data,
		})
		if err != nil {
			return fmt.Errorf("encode account %s: %w", a.Key, err)
		}
		pipe.Set(ctx, r.getKey(a.Key), val, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis put %d accounts: %w", len(list), err)
	}
	return nil
}

func decodeRedisAccount(k types.Pubkey, raw []byte) (*accounts.AccountInfo, error) {
	var v redisAccount
	if err := borsh.Deserialize(&v, raw); err != nil {
		return nil, fmt.Errorf("%w: redis account %s: %w", accounts.ErrMalformedAccount, k, err)
	}
	data := v.Data
	if data == nil {
		data = []byte{}
	}
	return &accounts.AccountInfo{
		Key:        k,
		Owner:      v.Owner,
		Lamports:   v.Lamports,
		Executable: v.Executable,
		Data:       data,
	}, nil
}
