package overflow

import (
	"fmt"

	"executor-resolver-sol/internal/accounts"
	"executor-resolver-sol/internal/consts"
	"executor-resolver-sol/internal/pkg/types"
	"executor-resolver-sol/internal/resolver"
	"executor-resolver-sol/internal/runtime"
)

// 结果账户布局：判别符(8) ‖ Resolver<InstructionGroups> 编码 ‖ 0 填充
const (
	recordHeaderSize = len(resolver.ResultAccount)
	// RecordInitSize 新建结果账户的大小，恰好容纳 Resolved(空)
	RecordInitSize = recordHeaderSize + consts.ResolverResultAccountInitSize
)

// RecordAddress 结果账户地址：PDA([ResolverResultAccountSeed], programID)，无需任何协调即可定位
func RecordAddress(programID types.Pubkey) (types.Pubkey, uint8, error) {
	return accounts.FindProgramAddress(programID, []byte(consts.ResolverResultAccountSeed))
}

// EncodeRecord 生成完整的结果账户数据（不含填充）
func EncodeRecord(r resolver.Resolver[resolver.InstructionGroups]) []byte {
	body := resolver.EncodeGroups(r)
	out := make([]byte, 0, recordHeaderSize+len(body))
	out = append(out, resolver.ResultAccount[:]...)
	return append(out, body...)
}

// ReadRecord 校验判别符后解码，尾部填充被忽略
func ReadRecord(data []byte) (resolver.Resolver[resolver.InstructionGroups], error) {
	if !resolver.ResultAccount.HasPrefix(data) {
		n := min(len(data), recordHeaderSize)
		return resolver.Resolver[resolver.InstructionGroups]{}, fmt.Errorf("%w: got %x", ErrDiscriminatorMismatch, data[:n])
	}
	r, _, err := resolver.DecodeGroupsPrefix(data[recordHeaderSize:])
	if err != nil {
		return r, fmt.Errorf("%w: record: %w", accounts.ErrMalformedAccount, err)
	}
	return r, nil
}

// WriteRecord 覆盖写入结果；账户必须已经足够大，多出的部分清零
func WriteRecord(acc *accounts.AccountInfo, r resolver.Resolver[resolver.InstructionGroups]) error {
	enc := EncodeRecord(r)
	if len(enc) > len(acc.Data) {
		return fmt.Errorf("%w: need %d, have %d", ErrRecordTooSmall, len(enc), len(acc.Data))
	}
	n := copy(acc.Data, enc)
	clear(acc.Data[n:])
	return nil
}

// NewRecordAccount 构造一个新建状态的结果账户（等价于程序 initialize 中的 init）
func NewRecordAccount(programID types.Pubkey, rent runtime.Rent) (*accounts.AccountInfo, error) {
	key, _, err := RecordAddress(programID)
	if err != nil {
		return nil, err
	}
	acc := &accounts.AccountInfo{
		Key:      key,
		Owner:    programID,
		Lamports: rent.MinimumBalance(RecordInitSize),
		Data:     make([]byte, RecordInitSize),
	}
	if err := WriteRecord(acc, resolver.Resolved(resolver.InstructionGroups{})); err != nil {
		return nil, err
	}
	return acc, nil
}
