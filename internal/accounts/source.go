package accounts

import (
	"context"

	"executor-resolver-sol/internal/pkg/types"
)

// Source 按地址批量读取账户，结果与 keys 一一对应；
// 不存在的账户返回 Exists() == false 的空账户而不是 nil
type Source interface {
	GetAccounts(ctx context.Context, keys []types.Pubkey) ([]*AccountInfo, error)
}

// Sink 持久化账户状态（种子数据、提交模式下每轮修改过的账户）
type Sink interface {
	PutAccounts(ctx context.Context, list ...*AccountInfo) error
}

// Ledger 同时可读可写的账户存储
type Ledger interface {
	Source
	Sink
}
