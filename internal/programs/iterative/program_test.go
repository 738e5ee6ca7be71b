package iterative

import (
	"context"
	"testing"

	"executor-resolver-sol/internal/accounts"
	"executor-resolver-sol/internal/consts"
	"executor-resolver-sol/internal/pkg/types"
	"executor-resolver-sol/internal/resolver"
	"executor-resolver-sol/internal/runtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceSink struct {
	list []*accounts.AccountInfo
}

func (s *sliceSink) PutAccounts(_ context.Context, list ...*accounts.AccountInfo) error {
	s.list = append(s.list, list...)
	return nil
}

func seeded(t *testing.T) (*Program, map[types.Pubkey]*accounts.AccountInfo) {
	p := New(consts.IterativeResolverProgram)
	sink := &sliceSink{}
	require.NoError(t, p.Seed(context.Background(), sink, runtime.DefaultRent()))
	require.Len(t, sink.list, 3)

	byKey := make(map[types.Pubkey]*accounts.AccountInfo)
	for _, a := range sink.list {
		byKey[a.Key] = a
	}
	return p, byKey
}

func TestResolveStopsAtFirstMissing(t *testing.T) {
	p, ledger := seeded(t)
	foo, bar, baz := p.FooAddress(), p.BarAddress(1), p.BazAddress(2)

	cases := []struct {
		name     string
		supplied []types.Pubkey
		missing  types.Pubkey
	}{
		{"nothing", nil, foo},
		{"foo", []types.Pubkey{foo}, bar},
		{"foo_bar", []types.Pubkey{foo, bar}, baz},
		{"bar_only", []types.Pubkey{bar}, foo},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var available []*accounts.AccountInfo
			for _, k := range c.supplied {
				available = append(available, ledger[k])
			}
			r, err := p.Resolve(available)
			require.NoError(t, err)
			m, ok := r.MissingAccounts()
			require.True(t, ok)
			assert.Equal(t, []types.Pubkey{c.missing}, m.Accounts)
		})
	}
}

func TestResolveBuildsExampleInstruction(t *testing.T) {
	p, ledger := seeded(t)
	foo, bar, baz := p.FooAddress(), p.BarAddress(1), p.BazAddress(2)

	r, err := p.Resolve([]*accounts.AccountInfo{ledger[baz], ledger[foo], ledger[bar]})
	require.NoError(t, err)
	groups, ok := r.Get()
	require.True(t, ok)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Instructions, 1)

	ix := groups[0].Instructions[0]
	assert.Equal(t, consts.IterativeResolverProgram, ix.ProgramID)
	assert.Equal(t, []byte{162, 253, 155, 217, 153, 18, 201, 68}, ix.Data)
	assert.Equal(t, []resolver.AccountMeta{
		resolver.Signer(resolver.PlaceholderPayer),
		resolver.Readonly(foo),
		resolver.Readonly(bar),
		resolver.Readonly(baz),
		resolver.Writable(p.QuxAddress(3)),
		resolver.Readonly(consts.SystemProgram),
	}, ix.Accounts)
	assert.Empty(t, groups[0].AddressLookupTables)
}

func TestResolveMalformedAccountIsFatal(t *testing.T) {
	p := New(consts.IterativeResolverProgram)
	broken := &accounts.AccountInfo{Key: p.FooAddress(), Data: []byte{1, 2, 3}}
	_, err := p.Resolve([]*accounts.AccountInfo{broken})
	assert.ErrorIs(t, err, accounts.ErrMalformedAccount)
}

func TestEntrypointThroughRuntime(t *testing.T) {
	p, ledger := seeded(t)
	rt := runtime.New(runtime.DefaultRent())
	rt.Register(p.Runtime())

	data, err := runtime.EncodeExecuteVaaV1(nil)
	require.NoError(t, err)

	out, err := rt.Execute(context.Background(), p.ID(), data, []*accounts.AccountInfo{ledger[p.FooAddress()]})
	require.NoError(t, err)
	r, err := resolver.DecodeGroups(out.ReturnData)
	require.NoError(t, err)
	m, ok := r.MissingAccounts()
	require.True(t, ok)
	assert.Equal(t, []types.Pubkey{p.BarAddress(1)}, m.Accounts)
	assert.Empty(t, out.Modified())
}
