package accounts

import (
	"fmt"

	"executor-resolver-sol/internal/pkg/types"

	"github.com/blocto/solana-go-sdk/common"
)

// FindProgramAddress 推导 PDA，返回地址与 bump
func FindProgramAddress(programID types.Pubkey, seeds ...[]byte) (types.Pubkey, uint8, error) {
	pk, bump, err := common.FindProgramAddress(seeds, common.PublicKey(programID))
	if err != nil {
		return types.Pubkey{}, 0, fmt.Errorf("find program address under %s: %w", programID, err)
	}
	return types.Pubkey(pk), bump, nil
}

// MustFindProgramAddress 只用于种子固定、不可能失败的场景
func MustFindProgramAddress(programID types.Pubkey, seeds ...[]byte) types.Pubkey {
	pk, _, err := FindProgramAddress(programID, seeds...)
	if err != nil {
		panic(err)
	}
	return pk
}
