package resolver

import (
	"fmt"

	"executor-resolver-sol/internal/consts"
	"executor-resolver-sol/internal/pkg/types"
)

// PlaceholderRole 占位账户代表的真实身份
type PlaceholderRole uint8

const (
	RolePayer PlaceholderRole = iota + 1
	RolePostedVaa
	RoleShimVaaSigs
	RoleKeypair
)

func (r PlaceholderRole) String() string {
	switch r {
	case RolePayer:
		return "payer"
	case RolePostedVaa:
		return "posted_vaa"
	case RoleShimVaaSigs:
		return "shim_vaa_sigs"
	case RoleKeypair:
		return "keypair"
	default:
		return "unknown"
	}
}

// Placeholder 占位表中的一项；Index 仅对 RoleKeypair 有意义
type Placeholder struct {
	Role  PlaceholderRole
	Index int
	Key   types.Pubkey
}

var (
	PlaceholderPayer       = placeholderKey(consts.PlaceholderPayerStr)
	PlaceholderPostedVaa   = placeholderKey(consts.PlaceholderPostedVaaStr)
	PlaceholderShimVaaSigs = placeholderKey(consts.PlaceholderShimVaaSigsStr)
	PlaceholderKeypairs    [consts.PlaceholderKeypairCount]types.Pubkey

	placeholderTable map[types.Pubkey]Placeholder
)

func init() {
	placeholderTable = map[types.Pubkey]Placeholder{
		PlaceholderPayer:       {Role: RolePayer, Key: PlaceholderPayer},
		PlaceholderPostedVaa:   {Role: RolePostedVaa, Key: PlaceholderPostedVaa},
		PlaceholderShimVaaSigs: {Role: RoleShimVaaSigs, Key: PlaceholderShimVaaSigs},
	}
	for i := range PlaceholderKeypairs {
		pk := placeholderKey(fmt.Sprintf(consts.PlaceholderKeypairFmt, i))
		PlaceholderKeypairs[i] = pk
		placeholderTable[pk] = Placeholder{Role: RoleKeypair, Index: i, Key: pk}
	}
}

func placeholderKey(s string) types.Pubkey {
	pk, err := types.PubkeyFromBytes([]byte(s))
	if err != nil {
		panic(fmt.Errorf("placeholder %q: %w", s, err))
	}
	return pk
}

// LookupPlaceholder 查询某个地址是否为保留占位符
func LookupPlaceholder(pk types.Pubkey) (Placeholder, bool) {
	p, ok := placeholderTable[pk]
	return p, ok
}

func IsPlaceholder(pk types.Pubkey) bool {
	_, ok := placeholderTable[pk]
	return ok
}

// Placeholders 返回完整占位表（payer、posted_vaa、shim_vaa_sigs、keypair_00..09）
func Placeholders() []Placeholder {
	out := make([]Placeholder, 0, len(placeholderTable))
	out = append(out, placeholderTable[PlaceholderPayer], placeholderTable[PlaceholderPostedVaa], placeholderTable[PlaceholderShimVaaSigs])
	for _, pk := range PlaceholderKeypairs {
		out = append(out, placeholderTable[pk])
	}
	return out
}
