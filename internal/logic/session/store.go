package session

import (
	"context"

	"executor-resolver-sol/internal/pkg/types"
)

// Store 会话状态与计划缓存
type Store interface {
	GetStatus(ctx context.Context, key types.Hash) (Status, error)
	// TryMarkPending 仅当会话不存在时标记为处理中，返回是否抢到
	TryMarkPending(ctx context.Context, key types.Hash) (bool, error)
	MarkStatus(ctx context.Context, key types.Hash, status Status) error
	// SavePlan 保存编码后的计划并把状态置为 StatusResolved
	SavePlan(ctx context.Context, key types.Hash, plan []byte) error
	GetPlan(ctx context.Context, key types.Hash) ([]byte, bool, error)
}
