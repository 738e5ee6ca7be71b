package accounts

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"executor-resolver-sol/internal/consts"
	"executor-resolver-sol/internal/pkg/types"

	"github.com/blocto/solana-go-sdk/common"
	alt "github.com/blocto/solana-go-sdk/program/address_lookup_table"
)

var ErrInvalidLookupTable = errors.New("invalid address lookup table account")

// 查找表账户头部（56 字节）：
//
//	u32 类型(1=LookupTable) | u64 deactivation_slot | u64 last_extended_slot |
//	u8 last_extended_slot_start_index | Option<Pubkey> authority | u16 padding
//
// authority 为 None 时仍占满 33 字节，地址区固定从 56 开始
const lookupTableTypeTag = 1

// LookupTable 地址查找表的解析结果
type LookupTable struct {
	Key              types.Pubkey
	Authority        *types.Pubkey
	DeactivationSlot uint64
	Addresses        []types.Pubkey
}

// ParseLookupTable 解析查找表账户数据，owner 必须是查找表程序
func ParseLookupTable(key, owner types.Pubkey, data []byte) (*LookupTable, error) {
	if len(data) < consts.AddressLookupTableMetaSize {
		return nil, fmt.Errorf("%w: %s has %d bytes", ErrInvalidLookupTable, key, len(data))
	}
	body := data[consts.AddressLookupTableMetaSize:]
	if len(body)%types.PubkeySize != 0 {
		return nil, fmt.Errorf("%w: %s body %d bytes not a multiple of 32", ErrInvalidLookupTable, key, len(body))
	}

	state, err := alt.DeserializeLookupTable(data, common.PublicKey(owner))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidLookupTable, key, err)
	}
	if state.ProgramState != alt.ProgramStateLookupTable {
		return nil, fmt.Errorf("%w: %s type tag %d", ErrInvalidLookupTable, key, state.ProgramState)
	}

	t := &LookupTable{
		Key:              key,
		DeactivationSlot: state.DeactivationSlot,
		Addresses:        make([]types.Pubkey, 0, len(body)/types.PubkeySize),
	}
	if state.Authority != nil {
		auth := types.Pubkey(*state.Authority)
		t.Authority = &auth
		for _, pk := range state.Addresses {
			t.Addresses = append(t.Addresses, types.Pubkey(pk))
		}
		return t, nil
	}
	// SDK 在 authority 为 None 时少跳过 32 字节，地址区需要按固定偏移重新读取
	for off := 0; off < len(body); off += types.PubkeySize {
		t.Addresses = append(t.Addresses, types.Pubkey(body[off:off+types.PubkeySize]))
	}
	return t, nil
}

// LookupTableAddress 查找表地址 PDA([authority, recent_slot_le])
func LookupTableAddress(authority types.Pubkey, recentSlot uint64) types.Pubkey {
	key, _ := alt.DeriveLookupTableAddress(common.PublicKey(authority), recentSlot)
	return types.Pubkey(key)
}

// EncodeLookupTable 生成一个已激活查找表的账户数据
func EncodeLookupTable(authority *types.Pubkey, lastExtendedSlot uint64, addresses []types.Pubkey) []byte {
	data := make([]byte, consts.AddressLookupTableMetaSize, consts.AddressLookupTableMetaSize+len(addresses)*types.PubkeySize)
	binary.LittleEndian.PutUint32(data[0:4], lookupTableTypeTag)
	binary.LittleEndian.PutUint64(data[4:12], math.MaxUint64)
	binary.LittleEndian.PutUint64(data[12:20], lastExtendedSlot)
	if authority != nil {
		data[21] = 1
		copy(data[22:54], authority[:])
	}
	for _, pk := range addresses {
		data = append(data, pk[:]...)
	}
	return data
}
