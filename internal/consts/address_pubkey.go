package consts

import (
	"executor-resolver-sol/internal/pkg/types"
)

// 公钥形式的地址常量（types.Pubkey），用于链上比对、性能优化等场景。
var (
	// Programs
	SystemProgram             types.Pubkey
	AddressLookupTableProgram types.Pubkey

	// Resolver programs
	NoopResolverProgram      types.Pubkey
	IterativeResolverProgram types.Pubkey
	LutResolverProgram       types.Pubkey
)

// init 自动将 base58 字符串地址转换为 types.Pubkey
func init() {
	SystemProgram = types.PubkeyFromBase58(SystemProgramStr)
	AddressLookupTableProgram = types.PubkeyFromBase58(AddressLookupTableProgramStr)

	NoopResolverProgram = types.PubkeyFromBase58(NoopResolverProgramStr)
	IterativeResolverProgram = types.PubkeyFromBase58(IterativeResolverProgramStr)
	LutResolverProgram = types.PubkeyFromBase58(LutResolverProgramStr)
}
