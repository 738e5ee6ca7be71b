package session

import (
	"context"
	"sync"

	"executor-resolver-sol/internal/pkg/types"
)

// MemoryStore 单进程实现，不过期；用于 CLI 与测试
type MemoryStore struct {
	mu     sync.Mutex
	status map[types.Hash]Status
	plans  map[types.Hash][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		status: make(map[types.Hash]Status),
		plans:  make(map[types.Hash][]byte),
	}
}

func (m *MemoryStore) GetStatus(_ context.Context, key types.Hash) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status[key], nil
}

func (m *MemoryStore) TryMarkPending(_ context.Context, key types.Hash) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.status[key]; ok {
		return false, nil
	}
	m.status[key] = StatusPending
	return true, nil
}

func (m *MemoryStore) MarkStatus(_ context.Context, key types.Hash, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status[key] = status
	return nil
}

func (m *MemoryStore) SavePlan(_ context.Context, key types.Hash, plan []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[key] = append([]byte{}, plan...)
	m.status[key] = StatusResolved
	return nil
}

func (m *MemoryStore) GetPlan(_ context.Context, key types.Hash) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte{}, p...), true, nil
}
