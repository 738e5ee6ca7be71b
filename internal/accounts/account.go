package accounts

import (
	"bytes"

	"executor-resolver-sol/internal/pkg/types"
)

// AccountInfo 一轮调用中提供给程序的账户视图
type AccountInfo struct {
	Key        types.Pubkey
	Owner      types.Pubkey
	Lamports   uint64
	Data       []byte
	Executable bool
	IsSigner   bool
	IsWritable bool
}

// Clone 深拷贝，运行时在每轮开始时对账户做快照
func (a *AccountInfo) Clone() *AccountInfo {
	if a == nil {
		return nil
	}
	c := *a
	c.Data = bytes.Clone(a.Data)
	if c.Data == nil {
		c.Data = []byte{}
	}
	return &c
}

// Exists 链上不存在的账户以零 lamports、空数据、系统程序（零值）owner 的形式提供
func (a *AccountInfo) Exists() bool {
	return a.Lamports > 0 || len(a.Data) > 0
}

// CloneAll 深拷贝一组账户，保持顺序
func CloneAll(list []*AccountInfo) []*AccountInfo {
	out := make([]*AccountInfo, len(list))
	for i, a := range list {
		out[i] = a.Clone()
	}
	return out
}

// Keys 按顺序返回账户地址
func Keys(list []*AccountInfo) []types.Pubkey {
	out := make([]types.Pubkey, len(list))
	for i, a := range list {
		out[i] = a.Key
	}
	return out
}
