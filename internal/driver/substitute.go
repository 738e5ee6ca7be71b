package driver

import (
	"errors"
	"fmt"

	"executor-resolver-sol/internal/pkg/types"
	"executor-resolver-sol/internal/resolver"

	sdktypes "github.com/blocto/solana-go-sdk/types"
)

var ErrUnresolvedPlaceholder = errors.New("placeholder has no substitute")

// Substitutions 提交前替换占位符的真实账户；keypair 占位符由 Substitute 现场生成
type Substitutions struct {
	Payer       types.Pubkey
	PostedVaa   types.Pubkey
	ShimVaaSigs types.Pubkey
}

// Submission 可直接提交的计划：占位符已替换，Signers 为生成的 keypair（按占位序号）
type Submission struct {
	Groups  resolver.InstructionGroups
	Signers map[int]sdktypes.Account
}

// Substitute 替换计划中的全部占位符。同一个 keypair_NN 在所有指令中映射到同一个新 keypair。
func (p *Plan) Substitute(subs Substitutions) (*Submission, error) {
	sub := &Submission{Signers: make(map[int]sdktypes.Account)}
	var missing []string

	groups := p.Groups.MapPubkeys(func(pk types.Pubkey) types.Pubkey {
		ph, ok := resolver.LookupPlaceholder(pk)
		if !ok {
			return pk
		}
		var to types.Pubkey
		switch ph.Role {
		case resolver.RolePayer:
			to = subs.Payer
		case resolver.RolePostedVaa:
			to = subs.PostedVaa
		case resolver.RoleShimVaaSigs:
			to = subs.ShimVaaSigs
		case resolver.RoleKeypair:
			acc, ok := sub.Signers[ph.Index]
			if !ok {
				acc = sdktypes.NewAccount()
				sub.Signers[ph.Index] = acc
			}
			to = types.Pubkey(acc.PublicKey)
		}
		if to.IsZero() {
			missing = append(missing, ph.Role.String())
			return pk
		}
		return to
	})
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnresolvedPlaceholder, missing)
	}
	sub.Groups = groups
	return sub, nil
}

// Instructions 按 group 转换为 solana-go-sdk 指令，供组装交易
func (s *Submission) Instructions() [][]sdktypes.Instruction {
	out := make([][]sdktypes.Instruction, 0, len(s.Groups))
	for _, g := range s.Groups {
		ixs := make([]sdktypes.Instruction, 0, len(g.Instructions))
		for _, ix := range g.Instructions {
			ixs = append(ixs, ix.ToSDK())
		}
		out = append(out, ixs)
	}
	return out
}
