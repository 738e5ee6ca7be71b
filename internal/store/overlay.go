package store

import (
	"context"
	"fmt"

	"executor-resolver-sol/internal/accounts"
	"executor-resolver-sol/internal/pkg/types"
)

// Overlay 两层账户视图：upper 中存在的账户优先，其余回落到 lower；写入只落到 upper
type Overlay struct {
	upper accounts.Ledger
	lower accounts.Source
}

func NewOverlay(upper accounts.Ledger, lower accounts.Source) *Overlay {
	return &Overlay{upper: upper, lower: lower}
}

func (o *Overlay) GetAccounts(ctx context.Context, keys []types.Pubkey) ([]*accounts.AccountInfo, error) {
	out, err := o.upper.GetAccounts(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("overlay upper: %w", err)
	}
	if o.lower == nil {
		return out, nil
	}

	var missIdx []int
	var missKeys []types.Pubkey
	for i, a := range out {
		if a == nil || !a.Exists() {
			missIdx = append(missIdx, i)
			missKeys = append(missKeys, keys[i])
		}
	}
	if len(missKeys) == 0 {
		return out, nil
	}

	lower, err := o.lower.GetAccounts(ctx, missKeys)
	if err != nil {
		return nil, fmt.Errorf("overlay lower: %w", err)
	}
	if len(lower) != len(missKeys) {
		return nil, fmt.Errorf("overlay lower returned %d accounts for %d keys", len(lower), len(missKeys))
	}
	for j, i := range missIdx {
		if lower[j] != nil {
			out[i] = lower[j]
		} else {
			out[i] = emptyAccount(keys[i])
		}
	}
	return out, nil
}

func (o *Overlay) PutAccounts(ctx context.Context, list ...*accounts.AccountInfo) error {
	return o.upper.PutAccounts(ctx, list...)
}
