package resolver

import (
	"fmt"
	"testing"

	"executor-resolver-sol/internal/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(b byte) types.Pubkey {
	var pk types.Pubkey
	for i := range pk {
		pk[i] = b
	}
	return pk
}

// chain 模拟 N 个依赖查找：第 i 个查找的 key 由第 i-1 个结果推导，present 表示哪些 key 已提供
func chain(n int, present map[types.Pubkey]bool, calls *[]int) Resolver[int] {
	var step func(i int, prev byte) Resolver[int]
	step = func(i int, prev byte) Resolver[int] {
		if i == n {
			return Resolved(int(prev))
		}
		k := key(prev + 1)
		*calls = append(*calls, i)
		var r Resolver[byte]
		if present[k] {
			r = Resolved(prev + 1)
		} else {
			r = MissingKeys[byte](k)
		}
		return AndThen(r, func(v byte) Resolver[int] { return step(i+1, v) })
	}
	return step(0, 0)
}

func TestAndThenShortCircuitsOnFirstMissing(t *testing.T) {
	for k := 0; k < 5; k++ {
		t.Run(fmt.Sprintf("first_absent_%d", k), func(t *testing.T) {
			present := map[types.Pubkey]bool{}
			for i := 0; i < k; i++ {
				present[key(byte(i+1))] = true
			}
			var calls []int
			r := chain(5, present, &calls)

			m, ok := r.MissingAccounts()
			require.True(t, ok)
			assert.Equal(t, []types.Pubkey{key(byte(k + 1))}, m.Accounts, "只能包含第一个缺失的 key")
			assert.Len(t, calls, k+1, "缺失之后的查找不应执行")
		})
	}

	var calls []int
	all := map[types.Pubkey]bool{key(1): true, key(2): true, key(3): true}
	r := chain(3, all, &calls)
	v, ok := r.Get()
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestAndThenPropagatesPending(t *testing.T) {
	called := false
	r := AndThen(Pending[int](), func(int) Resolver[string] {
		called = true
		return Resolved("x")
	})
	assert.True(t, r.IsPending())
	assert.False(t, called)
}

func TestPropagateEarlyReturn(t *testing.T) {
	routine := func(in Resolver[int]) Resolver[string] {
		v, ok := in.Get()
		if !ok {
			return Propagate[string](in)
		}
		return Resolved(fmt.Sprint(v))
	}

	assert.Equal(t, Resolved("7"), routine(Resolved(7)))
	assert.Equal(t, KindPending, routine(Pending[int]()).Kind())

	m, ok := routine(MissingKeys[int](key(9))).MissingAccounts()
	require.True(t, ok)
	assert.Equal(t, []types.Pubkey{key(9)}, m.Accounts)

	assert.Panics(t, func() { Propagate[string](Resolved(1)) })
}

func TestPairTable(t *testing.T) {
	ma := NewMissingAccounts(key(1), key(2)).WithLookupTables(key(100))
	mb := NewMissingAccounts(key(2), key(3)).WithLookupTables(key(100), key(101))

	r := Pair(Resolved(1), Resolved("a"))
	v, ok := r.Get()
	require.True(t, ok)
	assert.Equal(t, Both[int, string]{First: 1, Second: "a"}, v)

	m, _ := Pair(Resolved(1), Missing[string](mb)).MissingAccounts()
	assert.Equal(t, mb, m)

	m, _ = Pair(Missing[int](ma), Resolved("a")).MissingAccounts()
	assert.Equal(t, ma, m)

	m, _ = Pair(Missing[int](ma), Missing[string](mb)).MissingAccounts()
	assert.Equal(t, []types.Pubkey{key(1), key(2), key(2), key(3)}, m.Accounts, "拼接而非去重")
	assert.Equal(t, []types.Pubkey{key(100), key(101)}, m.AddressLookupTables, "查找表取并集")

	assert.True(t, Pair(Pending[int](), Missing[string](mb)).IsPending())
	assert.True(t, Pair(Resolved(1), Pending[string]()).IsPending())
}

func TestPairAssociative(t *testing.T) {
	a := MissingKeys[int](key(1))
	b := MissingKeys[int](key(2))
	c := MissingKeys[int](key(3))

	left, _ := Pair(Pair(a, b), c).MissingAccounts()
	right, _ := Pair(a, Pair(b, c)).MissingAccounts()
	assert.Equal(t, left, right)
	assert.Equal(t, []types.Pubkey{key(1), key(2), key(3)}, left.Accounts)
}

func TestPairCommutativeAsMultiset(t *testing.T) {
	a := Missing[int](NewMissingAccounts(key(1), key(1)).WithLookupTables(key(7)))
	b := Missing[int](NewMissingAccounts(key(2)).WithLookupTables(key(8)))

	ab, _ := Pair(a, b).MissingAccounts()
	ba, _ := Pair(b, a).MissingAccounts()
	assert.ElementsMatch(t, ab.Accounts, ba.Accounts)
	assert.ElementsMatch(t, ab.AddressLookupTables, ba.AddressLookupTables)
	assert.Equal(t, []types.Pubkey{key(2), key(1), key(1)}, ba.Accounts)
}

func TestPairIdentity(t *testing.T) {
	m := MissingKeys[int](key(5))
	left, _ := Pair(Resolved(struct{}{}), m).MissingAccounts()
	right, _ := Pair(m, Resolved(struct{}{})).MissingAccounts()
	assert.Equal(t, []types.Pubkey{key(5)}, left.Accounts)
	assert.Equal(t, left, right)
}

func TestAllCollectsEveryMissing(t *testing.T) {
	r := All(Resolved(1), MissingKeys[int](key(1)), Resolved(3), MissingKeys[int](key(2)))
	m, ok := r.MissingAccounts()
	require.True(t, ok)
	assert.Equal(t, []types.Pubkey{key(1), key(2)}, m.Accounts)

	vals, ok := All(Resolved(1), Resolved(2)).Get()
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, vals)
}

func TestMatchIsExhaustive(t *testing.T) {
	describe := func(r Resolver[int]) string {
		return Match(r,
			func(v int) string { return fmt.Sprintf("resolved:%d", v) },
			func(m MissingAccounts) string { return fmt.Sprintf("missing:%d", len(m.Accounts)) },
			func() string { return "pending" },
		)
	}
	assert.Equal(t, "resolved:4", describe(Resolved(4)))
	assert.Equal(t, "missing:2", describe(MissingKeys[int](key(1), key(2))))
	assert.Equal(t, "pending", describe(Pending[int]()))
}

func TestValidateRejectsEmptyMissing(t *testing.T) {
	assert.ErrorIs(t, MissingKeys[int]().Validate(), ErrEmptyMissing)
	assert.NoError(t, MissingKeys[int](key(1)).Validate())
	assert.NoError(t, Pending[int]().Validate())
	assert.NoError(t, Resolved(0).Validate())
}

func TestZeroValueIsInvalid(t *testing.T) {
	var r Resolver[InstructionGroups]
	assert.Equal(t, KindInvalid, r.Kind())
	assert.False(t, r.IsResolved())
	_, ok := r.Get()
	assert.False(t, ok)
	assert.ErrorIs(t, r.Validate(), ErrInvalidResolver)

	_, err := DecodeGroups(EncodeGroups(r))
	assert.ErrorIs(t, err, ErrUnknownKind, "零值不会被编码成 Resolved(空)")

	assert.Panics(t, func() { Pair(r, Resolved(1)) })
	assert.Panics(t, func() { AndThen(r, func(InstructionGroups) Resolver[int] { return Resolved(1) }) })
}
