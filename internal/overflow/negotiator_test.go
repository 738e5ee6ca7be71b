package overflow

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

var (
	testProgram    = types.Pubkey{9, 9, 9}
	testDescriptor = types.Pubkey{0xD}
	testPayer      = types.Pubkey{0xA}
	testLut        = types.Pubkey{0x1A}
)

func candidateKeys() []types.Pubkey {
	return []types.Pubkey{{0xC0}, {0xC1}, {0xC2}}
}

type harness struct {
	t       *testing.T
	rt      *runtime.Runtime
	n       *Negotiator
	record  *accounts.AccountInfo
	payer   *accounts.AccountInfo
	finalIx resolver.Instruction
}

func newHarness(t *testing.T) *harness {
	h := &harness{t: t, rt: runtime.New(runtime.DefaultRent())}
	h.finalIx = resolver.Instruction{
		ProgramID: testProgram,
		Accounts:  []resolver.AccountMeta{resolver.Signer(resolver.PlaceholderPayer)},
		Data:      []byte{1},
	}
	n, err := NewNegotiator(testProgram, testDescriptor, len(candidateKeys()),
		func(ic *runtime.InvokeContext, descriptor *accounts.AccountInfo) (resolver.MissingAccounts, error) {
			return resolver.NewMissingAccounts(candidateKeys()...).WithLookupTables(testLut), nil
		},
		func(ic *runtime.InvokeContext, descriptor *accounts.AccountInfo, candidates []*accounts.AccountInfo) (resolver.InstructionGroups, error) {
			assert.Equal(t, candidateKeys(), accounts.Keys(candidates))
			return resolver.InstructionGroups{{
				Instructions:        []resolver.Instruction{h.finalIx},
				AddressLookupTables: []types.Pubkey{testLut},
			}}, nil
		})
	require.NoError(t, err)
	h.n = n
	h.rt.Register(runtime.Program{ID: testProgram, Name: "negotiator", Entry: func(ic *runtime.InvokeContext, data []byte) error {
		r, err := n.Resolve(ic)
		if err != nil {
			return err
		}
		return ic.ReturnResolver(r)
	}})

	h.record, err = NewRecordAccount(testProgram, runtime.DefaultRent())
	require.NoError(t, err)
	h.record.IsWritable = true
	h.payer = &accounts.AccountInfo{Key: testPayer, Lamports: 10_000_000_000, IsSigner: true, IsWritable: true}
	return h
}

func (h *harness) bootstrap() []*accounts.AccountInfo {
	return []*accounts.AccountInfo{
		{Key: testDescriptor, Owner: testProgram, Lamports: 1_000_000, Data: []byte{1}},
		h.record,
		h.payer,
		{Key: consts.SystemProgram, Executable: true},
	}
}

// round 执行一轮并把被修改的账户写回 harness，模拟链上状态推进
func (h *harness) round(list []*accounts.AccountInfo) (*runtime.Outcome, error) {
	out, err := h.rt.Execute(context.Background(), testProgram, nil, list)
	if err != nil {
		return nil, err
	}
	for _, a := range out.Modified() {
		switch a.Key {
		case h.record.Key:
			h.record = a
		case h.payer.Key:
			h.payer = a
		}
	}
	return out, nil
}

func TestNegotiatorPhases(t *testing.T) {
	h := newHarness(t)

	out, err := h.round(nil)
	require.NoError(t, err)
	r, err := resolver.DecodeGroups(out.ReturnData)
	require.NoError(t, err)
	m, ok := r.MissingAccounts()
	require.True(t, ok)
	assert.Equal(t, []types.Pubkey{testDescriptor, h.n.RecordAddress(), resolver.PlaceholderPayer, consts.SystemProgram}, m.Accounts)

	payerBefore := h.payer.Lamports
	out, err = h.round(h.bootstrap())
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, out.ReturnData)
	assert.Len(t, h.record.Data, RecordInitSize+consts.MaxPermittedDataIncrease)
	assert.Equal(t, runtime.DefaultRent().MinimumBalance(len(h.record.Data)), h.record.Lamports)
	assert.Equal(t, payerBefore-(h.record.Lamports-runtime.DefaultRent().MinimumBalance(RecordInitSize)), h.payer.Lamports)

	stored, err := ReadRecord(h.record.Data)
	require.NoError(t, err)
	m, ok = stored.MissingAccounts()
	require.True(t, ok)
	assert.Equal(t, candidateKeys(), m.Accounts)
	assert.Equal(t, []types.Pubkey{testLut}, m.AddressLookupTables)

	full := h.bootstrap()
	for _, k := range candidateKeys() {
		full = append(full, &accounts.AccountInfo{Key: k})
	}
	out, err = h.round(full)
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, out.ReturnData)
	assert.Len(t, h.record.Data, RecordInitSize+2*consts.MaxPermittedDataIncrease)

	stored, err = ReadRecord(h.record.Data)
	require.NoError(t, err)
	groups, ok := stored.Get()
	require.True(t, ok)
	require.Len(t, groups, 1)
	assert.Equal(t, []resolver.Instruction{h.finalIx}, groups[0].Instructions)
}

func TestNegotiatorRejectsOtherCounts(t *testing.T) {
	h := newHarness(t)
	for _, n := range []int{1, 3, 5, 6, 8} {
		list := h.bootstrap()
		for len(list) < n {
			list = append(list, &accounts.AccountInfo{Key: types.Pubkey{byte(0xF0 + len(list))}})
		}
		_, err := h.round(list[:n])
		assert.ErrorIs(t, err, ErrInvalidAccounts, "count=%d", n)
	}
}

func TestNegotiatorValidatesBootstrap(t *testing.T) {
	h := newHarness(t)

	list := h.bootstrap()
	list[1] = h.record.Clone()
	list[1].IsWritable = false
	_, err := h.round(list)
	assert.ErrorIs(t, err, runtime.ErrAccountNotWritable)

	list = h.bootstrap()
	list[1] = h.record.Clone()
	list[1].Key = types.Pubkey{0xBB}
	_, err = h.round(list)
	assert.ErrorIs(t, err, ErrRecordAddressMismatch)

	list = h.bootstrap()
	list[1] = h.record.Clone()
	copy(list[1].Data, resolver.ExecuteVaaV1[:])
	_, err = h.round(list)
	assert.ErrorIs(t, err, ErrDiscriminatorMismatch)

	list = h.bootstrap()
	list[2] = h.payer.Clone()
	list[2].Lamports = 1
	_, err = h.round(list)
	assert.ErrorIs(t, err, runtime.ErrInsufficientFunds)
}

func TestCommitRejectsOversizedResultBeforeFunding(t *testing.T) {
	h := newHarness(t)
	keys := make([]types.Pubkey, 400)
	for i := range keys {
		keys[i] = types.Pubkey{byte(i), byte(i >> 8)}
	}
	h.rt.Register(runtime.Program{ID: testProgram, Name: "oversized", Entry: func(ic *runtime.InvokeContext, data []byte) error {
		record, payer := ic.Accounts[1], ic.Accounts[2]
		err := Commit(ic, record, payer, resolver.MissingKeys[resolver.InstructionGroups](keys...))
		assert.Len(t, record.Data, RecordInitSize)
		assert.Equal(t, uint64(10_000_000_000), payer.Lamports)
		return err
	}})
	_, err := h.round(h.bootstrap())
	assert.ErrorIs(t, err, ErrRecordTooSmall)
}

// 补足租金成功但扩容失败时，Commit 必须把已转出的 lamports 还原
func TestCommitRollsBackFundingWhenGrowthFails(t *testing.T) {
	h := newHarness(t)
	h.rt.Register(runtime.Program{ID: testProgram, Name: "foreign-record", Entry: func(ic *runtime.InvokeContext, data []byte) error {
		record, payer := ic.Accounts[1], ic.Accounts[2]
		record.Owner = types.Pubkey{0x0F}
		before := record.Lamports
		err := Commit(ic, record, payer, resolver.Pending[resolver.InstructionGroups]())
		assert.ErrorIs(t, err, runtime.ErrNotAccountOwner)
		assert.Equal(t, before, record.Lamports)
		assert.Equal(t, uint64(10_000_000_000), payer.Lamports)
		assert.Len(t, record.Data, RecordInitSize)
		return err
	}})
	_, err := h.round(h.bootstrap())
	assert.ErrorIs(t, err, runtime.ErrNotAccountOwner)
}
