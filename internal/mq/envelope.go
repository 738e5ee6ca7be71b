package mq

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/near/borsh-go"
)

// 消息类型前缀（u32 LE）
const (
	EventResolveRequest uint32 = 1
	EventResolveResult  uint32 = 2
)

// 解析结果状态
const (
	ResultResolved uint8 = 0
	ResultFailed   uint8 = 1
)

var ErrUnexpectedEvent = errors.New("unexpected event type")

// ResolveRequest 解析请求：目标 resolver 程序与 VAA body
type ResolveRequest struct {
	ProgramID [32]byte
	VaaBody   []byte
}

// ResolveResult 解析结果。Plan 为 Resolved(InstructionGroups) 的规范编码，失败时为空。
type ResolveResult struct {
	ProgramID [32]byte
	VaaHash   [32]byte
	Status    uint8
	Rounds    uint32
	Plan      []byte
	Error     string
}

// EncodeEvent 4 字节事件类型（小端）‖ borsh(msg)
func EncodeEvent(eventType uint32, msg any) ([]byte, error) {
	body, err := borsh.Serialize(msg)
	if err != nil {
		return nil, fmt.Errorf("EncodeEvent: marshal %T: %w", msg, err)
	}
	buf := make([]byte, 4, 4+len(body))
	binary.LittleEndian.PutUint32(buf, eventType)
	return append(buf, body...), nil
}

// DecodeEvent 校验事件类型后解码消息体
func DecodeEvent(data []byte, want uint32, out any) (err error) {
	if len(data) < 4 {
		return fmt.Errorf("DecodeEvent: %d bytes, missing event type", len(data))
	}
	if got := binary.LittleEndian.Uint32(data[:4]); got != want {
		return fmt.Errorf("%w: got %d want %d", ErrUnexpectedEvent, got, want)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("DecodeEvent: borsh panic: %v", r)
		}
	}()
	if err := borsh.Deserialize(out, data[4:]); err != nil {
		return fmt.Errorf("DecodeEvent: unmarshal %T: %w", out, err)
	}
	return nil
}
