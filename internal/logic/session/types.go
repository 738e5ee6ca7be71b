package session

import (
	"executor-resolver-sol/internal/pkg/types"
)

// Status 一次解析请求的处理状态（Redis 与内存实现共用编码）
type Status int

const (
	StatusUnknown  Status = 0 // 不存在
	StatusResolved Status = 1 // 已解析，计划已缓存
	StatusFailed   Status = 2 // 解析失败（程序错误、轮数超限）
	StatusPending  Status = 3 // 正在处理（幂等控制）
)

func (s Status) String() string {
	switch s {
	case StatusResolved:
		return "resolved"
	case StatusFailed:
		return "failed"
	case StatusPending:
		return "pending"
	default:
		return "unknown"
	}
}

// Key 会话标识：sha256(program id ‖ vaa body)
func Key(programID types.Pubkey, vaaBody []byte) types.Hash {
	buf := make([]byte, 0, len(programID)+len(vaaBody))
	buf = append(buf, programID[:]...)
	return types.HashBytes(append(buf, vaaBody...))
}
