package resolver

import "executor-resolver-sol/internal/pkg/types"

// MissingAccounts 表示下一轮必须补充的账户，以及建议预加载的查找表。
// Accounts 允许重复，顺序即发现顺序；AddressLookupTables 语义上是集合。
type MissingAccounts struct {
	Accounts            []types.Pubkey `yaml:"accounts"`
	AddressLookupTables []types.Pubkey `yaml:"address_lookup_tables"`
}

func NewMissingAccounts(keys ...types.Pubkey) MissingAccounts {
	return MissingAccounts{
		Accounts:            append([]types.Pubkey{}, keys...),
		AddressLookupTables: []types.Pubkey{},
	}
}

// WithLookupTables 追加查找表（去重）
func (m MissingAccounts) WithLookupTables(luts ...types.Pubkey) MissingAccounts {
	m.AddressLookupTables = unionPubkeys(m.AddressLookupTables, luts)
	return m
}

// Merge 账户列表直接拼接（保留重复），查找表取并集，不修改接收者
func (m MissingAccounts) Merge(other MissingAccounts) MissingAccounts {
	accounts := make([]types.Pubkey, 0, len(m.Accounts)+len(other.Accounts))
	accounts = append(accounts, m.Accounts...)
	accounts = append(accounts, other.Accounts...)
	return MissingAccounts{
		Accounts:            accounts,
		AddressLookupTables: unionPubkeys(m.AddressLookupTables, other.AddressLookupTables),
	}
}

func (m MissingAccounts) IsEmpty() bool {
	return len(m.Accounts) == 0
}

func unionPubkeys(a, b []types.Pubkey) []types.Pubkey {
	out := make([]types.Pubkey, 0, len(a)+len(b))
	seen := make(map[types.Pubkey]struct{}, len(a)+len(b))
	for _, list := range [][]types.Pubkey{a, b} {
		for _, k := range list {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}
