package overflow

import (
	"fmt"

	"executor-resolver-sol/internal/accounts"
	"executor-resolver-sol/internal/consts"
	"executor-resolver-sol/internal/pkg/logger"
	"executor-resolver-sol/internal/pkg/types"
	"executor-resolver-sol/internal/resolver"
	"executor-resolver-sol/internal/runtime"
)

// bootstrap 账户的固定位置
const (
	bootDescriptor = iota
	bootRecord
	bootPayer
	bootSystem
	bootstrapSize
)

// CandidatesFunc 第 1 阶段：根据描述账户计算下一轮需要的（可能很大的）账户集合
type CandidatesFunc func(ic *runtime.InvokeContext, descriptor *accounts.AccountInfo) (resolver.MissingAccounts, error)

// FinalFunc 第 2 阶段：候选账户已全部提供，构造最终执行计划
type FinalFunc func(ic *runtime.InvokeContext, descriptor *accounts.AccountInfo, candidates []*accounts.AccountInfo) (resolver.InstructionGroups, error)

// Negotiator 按本轮提供的账户数量选择阶段的溢出协商：
//   - 0 个账户：Missing(描述账户, 结果账户, payer, system program)
//   - 4 个（bootstrap）：结果账户写入 Missing(候选集合)，直接返回 Pending
//   - 4 + CandidateCount 个：结果账户写入 Resolved(最终计划)，直接返回 Pending
//   - 其它数量：ErrInvalidAccounts
type Negotiator struct {
	ProgramID      types.Pubkey
	Descriptor     types.Pubkey
	CandidateCount int
	Candidates     CandidatesFunc
	Final          FinalFunc

	record types.Pubkey
}

func NewNegotiator(programID, descriptor types.Pubkey, candidateCount int, candidates CandidatesFunc, final FinalFunc) (*Negotiator, error) {
	if candidateCount <= 0 {
		return nil, fmt.Errorf("candidate count must be positive, got %d", candidateCount)
	}
	record, _, err := RecordAddress(programID)
	if err != nil {
		return nil, err
	}
	return &Negotiator{
		ProgramID:      programID,
		Descriptor:     descriptor,
		CandidateCount: candidateCount,
		Candidates:     candidates,
		Final:          final,
		record:         record,
	}, nil
}

func (n *Negotiator) RecordAddress() types.Pubkey {
	return n.record
}

// Bootstrap 第 0 轮要求的账户，顺序即后续轮次的位置约定
func (n *Negotiator) Bootstrap() []types.Pubkey {
	return []types.Pubkey{n.Descriptor, n.record, resolver.PlaceholderPayer, consts.SystemProgram}
}

func (n *Negotiator) Resolve(ic *runtime.InvokeContext) (resolver.Resolver[resolver.InstructionGroups], error) {
	supplied := len(ic.Accounts)
	switch supplied {
	case 0:
		return resolver.MissingKeys[resolver.InstructionGroups](n.Bootstrap()...), nil
	case bootstrapSize, bootstrapSize + n.CandidateCount:
	default:
		return resolver.Resolver[resolver.InstructionGroups]{}, fmt.Errorf("%w: got %d, want 0, %d or %d",
			ErrInvalidAccounts, supplied, bootstrapSize, bootstrapSize+n.CandidateCount)
	}

	descriptor := ic.Accounts[bootDescriptor]
	record := ic.Accounts[bootRecord]
	payer := ic.Accounts[bootPayer]
	if descriptor.Key != n.Descriptor {
		return resolver.Resolver[resolver.InstructionGroups]{}, fmt.Errorf("%w: descriptor %s, want %s", ErrInvalidAccounts, descriptor.Key, n.Descriptor)
	}
	if record.Key != n.record {
		return resolver.Resolver[resolver.InstructionGroups]{}, fmt.Errorf("%w: %s, want %s", ErrRecordAddressMismatch, record.Key, n.record)
	}
	if ic.Accounts[bootSystem].Key != consts.SystemProgram {
		return resolver.Resolver[resolver.InstructionGroups]{}, fmt.Errorf("%w: expected system program at position %d", ErrInvalidAccounts, bootSystem)
	}
	if !record.IsWritable {
		return resolver.Resolver[resolver.InstructionGroups]{}, fmt.Errorf("%w: record %s", runtime.ErrAccountNotWritable, record.Key)
	}
	if record.Owner != n.ProgramID {
		return resolver.Resolver[resolver.InstructionGroups]{}, fmt.Errorf("%w: record %s", runtime.ErrNotAccountOwner, record.Key)
	}
	if _, err := ReadRecord(record.Data); err != nil {
		return resolver.Resolver[resolver.InstructionGroups]{}, err
	}

	var result resolver.Resolver[resolver.InstructionGroups]
	if supplied == bootstrapSize {
		missing, err := n.Candidates(ic, descriptor)
		if err != nil {
			return result, err
		}
		result = resolver.Missing[resolver.InstructionGroups](missing)
	} else {
		groups, err := n.Final(ic, descriptor, ic.Accounts[bootstrapSize:])
		if err != nil {
			return result, err
		}
		result = resolver.Resolved(groups)
	}

	if err := Commit(ic, record, payer, result); err != nil {
		return resolver.Resolver[resolver.InstructionGroups]{}, err
	}
	logger.Debugf("[overflow] 阶段完成: accounts=%d record=%s result=%s", supplied, record.Key, result.Kind())
	return resolver.Pending[resolver.InstructionGroups](), nil
}
