package store

import (
	"context"
	"sync"

	"executor-resolver-sol/internal/accounts"
	"executor-resolver-sol/internal/pkg/types"
)

// MemoryLedger 进程内账户存储，用于本地解析与测试
type MemoryLedger struct {
	mu       sync.RWMutex
	accounts map[types.Pubkey]*accounts.AccountInfo
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{accounts: make(map[types.Pubkey]*accounts.AccountInfo)}
}

// GetAccounts 返回副本；不存在的账户返回空账户
func (m *MemoryLedger) GetAccounts(_ context.Context, keys []types.Pubkey) ([]*accounts.AccountInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*accounts.AccountInfo, len(keys))
	for i, k := range keys {
		if a, ok := m.accounts[k]; ok {
			out[i] = a.Clone()
		} else {
			out[i] = emptyAccount(k)
		}
	}
	return out, nil
}

func (m *MemoryLedger) PutAccounts(_ context.Context, list ...*accounts.AccountInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range list {
		m.accounts[a.Key] = stored(a)
	}
	return nil
}

func (m *MemoryLedger) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.accounts)
}

func emptyAccount(k types.Pubkey) *accounts.AccountInfo {
	return &accounts.AccountInfo{Key: k, Data: []byte{}}
}

// stored 去掉本轮的签名/可写标记，只保留链上状态
func stored(a *accounts.AccountInfo) *accounts.AccountInfo {
	c := a.Clone()
	c.IsSigner = false
	c.IsWritable = false
	return c
}
