package resolver

import (
	"executor-resolver-sol/internal/pkg/types"

	"github.com/blocto/solana-go-sdk/common"
	sdktypes "github.com/blocto/solana-go-sdk/types"
)

// AccountMeta 指令中的一个账户引用，顺序与目标程序期望的账户列表按位置绑定
type AccountMeta struct {
	Pubkey     types.Pubkey `yaml:"pubkey"`
	IsSigner   bool         `yaml:"is_signer"`
	IsWritable bool         `yaml:"is_writable"`
}

type Instruction struct {
	ProgramID types.Pubkey  `yaml:"program_id"`
	Accounts  []AccountMeta `yaml:"accounts"`
	Data      []byte        `yaml:"data"`
}

// InstructionGroup 需要放在同一笔交易里执行的一组指令，以及用于压缩地址的查找表
type InstructionGroup struct {
	Instructions        []Instruction  `yaml:"instructions"`
	AddressLookupTables []types.Pubkey `yaml:"address_lookup_tables"`
}

// InstructionGroups 完整的执行计划，按提交顺序排列
type InstructionGroups []InstructionGroup

// Signer 可写签名账户（payer 的常见形态）
func Signer(pk types.Pubkey) AccountMeta {
	return AccountMeta{Pubkey: pk, IsSigner: true, IsWritable: true}
}

func Writable(pk types.Pubkey) AccountMeta {
	return AccountMeta{Pubkey: pk, IsWritable: true}
}

func Readonly(pk types.Pubkey) AccountMeta {
	return AccountMeta{Pubkey: pk}
}

// ToSDK 转换为 solana-go-sdk 指令，供 relayer 组装交易
func (ix Instruction) ToSDK() sdktypes.Instruction {
	metas := make([]sdktypes.AccountMeta, 0, len(ix.Accounts))
	for _, a := range ix.Accounts {
		metas = append(metas, sdktypes.AccountMeta{
			PubKey:     common.PublicKey(a.Pubkey),
			IsSigner:   a.IsSigner,
			IsWritable: a.IsWritable,
		})
	}
	return sdktypes.Instruction{
		ProgramID: common.PublicKey(ix.ProgramID),
		Accounts:  metas,
		Data:      append([]byte{}, ix.Data...),
	}
}

// MapPubkeys 返回替换了账户地址的副本（program id 与查找表一并替换），原值不变
func (g InstructionGroups) MapPubkeys(f func(types.Pubkey) types.Pubkey) InstructionGroups {
	out := make(InstructionGroups, 0, len(g))
	for _, group := range g {
		ng := InstructionGroup{
			Instructions:        make([]Instruction, 0, len(group.Instructions)),
			AddressLookupTables: make([]types.Pubkey, 0, len(group.AddressLookupTables)),
		}
		for _, ix := range group.Instructions {
			nix := Instruction{
				ProgramID: f(ix.ProgramID),
				Accounts:  make([]AccountMeta, 0, len(ix.Accounts)),
				Data:      append([]byte{}, ix.Data...),
			}
			for _, a := range ix.Accounts {
				a.Pubkey = f(a.Pubkey)
				nix.Accounts = append(nix.Accounts, a)
			}
			ng.Instructions = append(ng.Instructions, nix)
		}
		for _, lut := range group.AddressLookupTables {
			ng.AddressLookupTables = append(ng.AddressLookupTables, f(lut))
		}
		out = append(out, ng)
	}
	return out
}

// AccountCount 计划中引用的账户总数（含重复），用于日志
func (g InstructionGroups) AccountCount() int {
	n := 0
	for _, group := range g {
		for _, ix := range group.Instructions {
			n += len(ix.Accounts)
		}
	}
	return n
}
