package luttable

import (
	"context"
	"encoding/binary"
	"fmt"

	"executor-resolver-sol/internal/accounts"
	"executor-resolver-sol/internal/consts"
	"executor-resolver-sol/internal/overflow"
	"executor-resolver-sol/internal/pkg/types"
	"executor-resolver-sol/internal/resolver"
	"executor-resolver-sol/internal/runtime"
)

const Name = "example-lookup-table-resolution"

const (
	// TableSize 查找表中的地址数量：PDA([n])，n < 128
	TableSize = 128
	// CandidateCount 第 1 阶段要求的账户数量：PDA([n])，n < 64
	CandidateCount = 64
	// 最终指令使用 PDA([64..95])
	finalFirst = 64
	finalLast  = 95
)

var (
	ExecuteVaaV1 = resolver.ExecuteVaaV1.Uint64()

	// LUTDiscriminator 查找表指针账户的判别符 sha256("account:LUT")[:8]
	LUTDiscriminator = resolver.AccountDiscriminator("LUT")
	// ExecuteVaaV1Instruction 最终计划中指令的判别符 sha256("global:execute_vaa_v1")[:8]
	ExecuteVaaV1Instruction = resolver.InstructionDiscriminator("execute_vaa_v1")
)

// LUT 查找表指针账户：判别符 ‖ borsh{bump: u8, address: Pubkey}
type LUT struct {
	Bump    uint8
	Address types.Pubkey
}

const lutSpace = 8 + 1 + 32

// Program 通过结果账户返回大结果的示例：
// 第 1 阶段要求 64 个候选账户，第 2 阶段返回引用 32 个账户与查找表的最终指令
type Program struct {
	id         types.Pubkey
	pointer    types.Pubkey
	pointerBmp uint8
	pdas       [TableSize]types.Pubkey
	negotiator *overflow.Negotiator
}

func New(programID types.Pubkey) (*Program, error) {
	p := &Program{id: programID}
	var err error
	if p.pointer, p.pointerBmp, err = accounts.FindProgramAddress(programID, []byte("lut")); err != nil {
		return nil, err
	}
	for n := range p.pdas {
		if p.pdas[n], _, err = accounts.FindProgramAddress(programID, []byte{byte(n)}); err != nil {
			return nil, err
		}
	}
	p.negotiator, err = overflow.NewNegotiator(programID, p.pointer, CandidateCount, p.candidates, p.final)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Program) ID() types.Pubkey {
	return p.id
}

// PointerAddress 查找表指针账户 PDA("lut")
func (p *Program) PointerAddress() types.Pubkey {
	return p.pointer
}

func (p *Program) RecordAddress() types.Pubkey {
	return p.negotiator.RecordAddress()
}

// Address PDA([n])
func (p *Program) Address(n int) types.Pubkey {
	return p.pdas[n]
}

func (p *Program) Runtime() runtime.Program {
	return runtime.Program{ID: p.id, Name: Name, Entry: p.handleInstruction}
}

func (p *Program) handleInstruction(ic *runtime.InvokeContext, data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("%w: %d bytes", runtime.ErrUnknownInstruction, len(data))
	}

	switch binary.BigEndian.Uint64(data[:8]) {
	case ExecuteVaaV1:
		if _, err := runtime.DecodeExecuteVaaV1(data); err != nil {
			return err
		}
		r, err := p.negotiator.Resolve(ic)
		if err != nil {
			return err
		}
		return ic.ReturnResolver(r)
	default:
		return fmt.Errorf("%w: %x", runtime.ErrUnknownInstruction, data[:8])
	}
}

func (p *Program) loadPointer(descriptor *accounts.AccountInfo) (LUT, error) {
	if descriptor.Owner != p.id {
		return LUT{}, fmt.Errorf("%w: lut pointer %s owned by %s", accounts.ErrMalformedAccount, descriptor.Key, descriptor.Owner)
	}
	return accounts.Decode[LUT](descriptor.Data, LUTDiscriminator)
}

func (p *Program) candidates(_ *runtime.InvokeContext, descriptor *accounts.AccountInfo) (resolver.MissingAccounts, error) {
	lut, err := p.loadPointer(descriptor)
	if err != nil {
		return resolver.MissingAccounts{}, err
	}
	return resolver.NewMissingAccounts(p.pdas[:CandidateCount]...).WithLookupTables(lut.Address), nil
}

func (p *Program) final(_ *runtime.InvokeContext, descriptor *accounts.AccountInfo, candidates []*accounts.AccountInfo) (resolver.InstructionGroups, error) {
	lut, err := p.loadPointer(descriptor)
	if err != nil {
		return nil, err
	}
	loads := make([]resolver.Resolver[*accounts.AccountInfo], 0, CandidateCount)
	for _, k := range p.pdas[:CandidateCount] {
		loads = append(loads, accounts.Load(candidates, k))
	}
	all := resolver.All(loads...)
	if m, ok := all.MissingAccounts(); ok {
		return nil, fmt.Errorf("%w: %d candidate accounts not supplied, first %s",
			overflow.ErrInvalidAccounts, len(m.Accounts), m.Accounts[0])
	}
	metas := make([]resolver.AccountMeta, 0, 2+finalLast-finalFirst+1)
	metas = append(metas, resolver.Signer(resolver.PlaceholderPayer))
	for n := finalFirst; n <= finalLast; n++ {
		metas = append(metas, resolver.Writable(p.pdas[n]))
	}
	metas = append(metas, resolver.Readonly(consts.SystemProgram))

	return resolver.InstructionGroups{{
		Instructions: []resolver.Instruction{{
			ProgramID: p.id,
			Accounts:  metas,
			Data:      ExecuteVaaV1Instruction.Bytes(),
		}},
		AddressLookupTables: []types.Pubkey{lut.Address},
	}}, nil
}

// Seed 等价于链上的 initialize：创建结果账户、查找表指针，以及写入 128 个地址的查找表
func (p *Program) Seed(ctx context.Context, sink accounts.Sink, rent runtime.Rent, recentSlot uint64) (types.Pubkey, error) {
	authority, _, err := accounts.FindProgramAddress(p.id, []byte("lut_authority"))
	if err != nil {
		return types.Pubkey{}, err
	}
	tableKey := accounts.LookupTableAddress(authority, recentSlot)

	record, err := overflow.NewRecordAccount(p.id, rent)
	if err != nil {
		return types.Pubkey{}, err
	}
	pointerData, err := accounts.Encode(LUTDiscriminator, LUT{Bump: p.pointerBmp, Address: tableKey})
	if err != nil {
		return types.Pubkey{}, err
	}
	tableData := accounts.EncodeLookupTable(&authority, recentSlot, p.pdas[:])

	err = sink.PutAccounts(ctx,
		record,
		&accounts.AccountInfo{
			Key:      p.pointer,
			Owner:    p.id,
			Lamports: rent.MinimumBalance(lutSpace),
			Data:     pointerData,
		},
		&accounts.AccountInfo{
			Key:      tableKey,
			Owner:    consts.AddressLookupTableProgram,
			Lamports: rent.MinimumBalance(len(tableData)),
			Data:     tableData,
		},
	)
	if err != nil {
		return types.Pubkey{}, fmt.Errorf("seed %s: %w", Name, err)
	}
	return tableKey, nil
}
