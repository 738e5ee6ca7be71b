package session

import (
	"context"
	"fmt"

	"executor-resolver-sol/internal/pkg/logger"
	"executor-resolver-sol/internal/pkg/types"
)

// Decision Begin 的判重结果
type Decision int

const (
	DecisionResolve Decision = iota // 需要解析
	DecisionCached                  // 已有缓存计划
	DecisionSkip                    // 其他实例正在处理
)

// Manager 封装判重与计划缓存
type Manager struct {
	store Store
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Begin 判断一次请求是否需要解析：
//   - 已解析且计划仍在缓存中：返回缓存计划
//   - 正在处理：跳过
//   - 其余情况（不存在、上次失败、计划已过期）：抢占处理权
func (m *Manager) Begin(ctx context.Context, key types.Hash) (Decision, []byte, error) {
	status, err := m.store.GetStatus(ctx, key)
	if err != nil {
		return DecisionSkip, nil, err
	}
	switch status {
	case StatusResolved:
		plan, ok, err := m.store.GetPlan(ctx, key)
		if err != nil {
			return DecisionSkip, nil, err
		}
		if ok {
			return DecisionCached, plan, nil
		}
		logger.Warnf("[session] 计划缓存已过期，重新解析: %s", key)
	case StatusPending:
		return DecisionSkip, nil, nil
	}

	if status == StatusUnknown {
		acquired, err := m.store.TryMarkPending(ctx, key)
		if err != nil {
			return DecisionSkip, nil, err
		}
		if !acquired {
			return DecisionSkip, nil, nil
		}
		return DecisionResolve, nil, nil
	}
	if err := m.store.MarkStatus(ctx, key, StatusPending); err != nil {
		return DecisionSkip, nil, fmt.Errorf("mark pending: %w", err)
	}
	return DecisionResolve, nil, nil
}

// Finish 记录解析结果：成功时缓存计划，失败时标记失败以便稍后重试
func (m *Manager) Finish(ctx context.Context, key types.Hash, plan []byte, resolveErr error) error {
	if resolveErr != nil {
		return m.store.MarkStatus(ctx, key, StatusFailed)
	}
	return m.store.SavePlan(ctx, key, plan)
}
