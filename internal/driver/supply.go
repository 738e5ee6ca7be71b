package driver

import (
	"context"
	"fmt"

	"executor-resolver-sol/internal/accounts"
	"executor-resolver-sol/internal/pkg/types"
	"executor-resolver-sol/internal/resolver"
)

// supply 按请求顺序组装本轮账户：
//   - payer 占位符替换为真实 payer，并以可写签名者身份提供
//   - 结果账户以可写身份提供
//   - 其它占位符不查询，以空账户提供
//   - 不存在的账户以空账户提供
func (d *Driver) supply(ctx context.Context, s *session) ([]*accounts.AccountInfo, error) {
	var fetch []types.Pubkey
	pending := make(map[types.Pubkey]struct{})
	for _, k := range s.requested {
		key := d.substitute(k)
		if resolver.IsPlaceholder(key) {
			continue
		}
		if _, ok := s.known[key]; ok {
			continue
		}
		if _, ok := pending[key]; ok {
			continue
		}
		pending[key] = struct{}{}
		fetch = append(fetch, key)
	}
	if len(fetch) > 0 {
		got, err := d.source.GetAccounts(ctx, fetch)
		if err != nil {
			return nil, fmt.Errorf("fetch %d accounts: %w", len(fetch), err)
		}
		if len(got) != len(fetch) {
			return nil, fmt.Errorf("account source returned %d accounts for %d keys", len(got), len(fetch))
		}
		for i, a := range got {
			if a == nil {
				a = &accounts.AccountInfo{Key: fetch[i], Data: []byte{}}
			}
			s.known[fetch[i]] = a
		}
	}

	out := make([]*accounts.AccountInfo, 0, len(s.requested))
	for _, k := range s.requested {
		key := d.substitute(k)
		var a *accounts.AccountInfo
		if known, ok := s.known[key]; ok {
			a = known.Clone()
		} else {
			a = &accounts.AccountInfo{Key: key, Data: []byte{}}
		}
		a.Key = key
		a.IsSigner = key == d.opts.Payer
		a.IsWritable = key == d.opts.Payer || key == s.record
		out = append(out, a)
	}
	return out, nil
}

func (d *Driver) substitute(k types.Pubkey) types.Pubkey {
	if k == resolver.PlaceholderPayer && !d.opts.Payer.IsZero() {
		return d.opts.Payer
	}
	return k
}

// fetchLookupTables 读取并缓存程序建议的查找表
func (d *Driver) fetchLookupTables(ctx context.Context, s *session, keys []types.Pubkey) error {
	var fetch []types.Pubkey
	for _, k := range keys {
		if _, ok := s.luts[k]; !ok {
			fetch = append(fetch, k)
		}
	}
	if len(fetch) == 0 {
		return nil
	}
	got, err := d.source.GetAccounts(ctx, fetch)
	if err != nil {
		return fmt.Errorf("fetch lookup tables: %w", err)
	}
	if len(got) != len(fetch) {
		return fmt.Errorf("account source returned %d accounts for %d lookup tables", len(got), len(fetch))
	}
	for i, a := range got {
		var owner types.Pubkey
		var data []byte
		if a != nil {
			owner, data = a.Owner, a.Data
		}
		table, err := accounts.ParseLookupTable(fetch[i], owner, data)
		if err != nil {
			return err
		}
		s.luts[fetch[i]] = table.Addresses
	}
	return nil
}
