package runtime

import (
	"context"
	"encoding/binary"
	"fmt"

	"executor-resolver-sol/internal/accounts"
	"executor-resolver-sol/internal/consts"
	"executor-resolver-sol/internal/pkg/types"
	"executor-resolver-sol/internal/resolver"

	sdktypes "github.com/blocto/solana-go-sdk/types"
)

// systemTransferIndex system program 指令枚举中 Transfer 的序号
const systemTransferIndex = 2

// InvokeContext 传给程序入口的单轮执行上下文。
// Accounts 是本轮快照，程序对它的修改只有在入口成功返回后才会生效。
type InvokeContext struct {
	ctx        context.Context
	ProgramID  types.Pubkey
	Accounts   []*accounts.AccountInfo
	rent       Rent
	startLen   map[types.Pubkey]int
	returnData []byte
}

func (ic *InvokeContext) Context() context.Context {
	return ic.ctx
}

func (ic *InvokeContext) Rent() Rent {
	return ic.rent
}

// Account 按地址取本轮提供的账户
func (ic *InvokeContext) Account(key types.Pubkey) (*accounts.AccountInfo, error) {
	if a := accounts.Find(ic.Accounts, key); a != nil {
		return a, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, key)
}

// Invoke 跨程序调用。目前只支持 system program 的 Transfer，
// 且 system program 账户本身必须出现在本轮账户中。
func (ic *InvokeContext) Invoke(ix sdktypes.Instruction) error {
	programID := types.Pubkey(ix.ProgramID)
	if programID != consts.SystemProgram {
		return fmt.Errorf("%w: program %s", ErrUnsupportedCpi, programID)
	}
	if _, err := ic.Account(programID); err != nil {
		return err
	}
	if len(ix.Data) != 12 || binary.LittleEndian.Uint32(ix.Data[:4]) != systemTransferIndex {
		return fmt.Errorf("%w: system instruction %x", ErrUnsupportedCpi, ix.Data)
	}
	if len(ix.Accounts) != 2 {
		return fmt.Errorf("%w: transfer expects 2 accounts, got %d", ErrInvalidInstructionData, len(ix.Accounts))
	}
	amount := binary.LittleEndian.Uint64(ix.Data[4:])

	from, err := ic.Account(types.Pubkey(ix.Accounts[0].PubKey))
	if err != nil {
		return err
	}
	to, err := ic.Account(types.Pubkey(ix.Accounts[1].PubKey))
	if err != nil {
		return err
	}
	if !from.IsSigner {
		return fmt.Errorf("%w: %s", ErrMissingSignature, from.Key)
	}
	if !from.IsWritable {
		return fmt.Errorf("%w: %s", ErrAccountNotWritable, from.Key)
	}
	if !to.IsWritable {
		return fmt.Errorf("%w: %s", ErrAccountNotWritable, to.Key)
	}
	if from.Lamports < amount {
		return fmt.Errorf("%w: %s has %d, need %d", ErrInsufficientFunds, from.Key, from.Lamports, amount)
	}
	from.Lamports -= amount
	to.Lamports += amount
	return nil
}

// Realloc 调整程序自有账户的数据长度，新增部分补 0。
// 相对本轮开始时的长度，增长量不得超过 MaxPermittedDataIncrease。
func (ic *InvokeContext) Realloc(acc *accounts.AccountInfo, newLen int) error {
	if acc.Owner != ic.ProgramID {
		return fmt.Errorf("%w: %s owned by %s", ErrNotAccountOwner, acc.Key, acc.Owner)
	}
	if !acc.IsWritable {
		return fmt.Errorf("%w: %s", ErrAccountNotWritable, acc.Key)
	}
	if newLen < 0 || newLen > consts.MaxPermittedDataLength {
		return fmt.Errorf("%w: %d", ErrDataLengthTooLarge, newLen)
	}
	start, ok := ic.startLen[acc.Key]
	if !ok {
		start = len(acc.Data)
	}
	if newLen-start > consts.MaxPermittedDataIncrease {
		return fmt.Errorf("%w: %d -> %d", ErrDataIncreaseTooLarge, start, newLen)
	}
	cur := len(acc.Data)
	switch {
	case newLen > cur:
		acc.Data = append(acc.Data, make([]byte, newLen-cur)...)
	case newLen < cur:
		acc.Data = acc.Data[:newLen]
	}
	return nil
}

// SetReturnData 设置直接返回值；超过 1024 字节属于致命错误
func (ic *InvokeContext) SetReturnData(data []byte) error {
	if len(data) > consts.MaxReturnDataSize {
		return fmt.Errorf("%w: %d > %d", ErrReturnDataTooLarge, len(data), consts.MaxReturnDataSize)
	}
	ic.returnData = append([]byte{}, data...)
	return nil
}

// ReturnResolver 把解析结果按规范编码后作为返回值
func (ic *InvokeContext) ReturnResolver(r resolver.Resolver[resolver.InstructionGroups]) error {
	if r.Kind() == resolver.KindInvalid {
		return resolver.ErrInvalidResolver
	}
	return ic.SetReturnData(resolver.EncodeGroups(r))
}
