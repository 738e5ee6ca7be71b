package accounts

import (
	"encoding/binary"
	"testing"

	"executor-resolver-sol/internal/consts"
	"executor-resolver-sol/internal/pkg/types"

	alt "github.com/blocto/solana-go-sdk/program/address_lookup_table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupTableRoundTrip(t *testing.T) {
	auth := pk(0xAA)
	addrs := []types.Pubkey{pk(1), pk(2), pk(3)}
	data := EncodeLookupTable(&auth, 42, addrs)
	assert.Len(t, data, consts.AddressLookupTableMetaSize+3*32)

	table, err := ParseLookupTable(pk(9), consts.AddressLookupTableProgram, data)
	require.NoError(t, err)
	assert.Equal(t, addrs, table.Addresses)
	require.NotNil(t, table.Authority)
	assert.Equal(t, auth, *table.Authority)
	assert.Equal(t, ^uint64(0), table.DeactivationSlot)

	table, err = ParseLookupTable(pk(9), consts.AddressLookupTableProgram, EncodeLookupTable(nil, 0, nil))
	require.NoError(t, err)
	assert.Nil(t, table.Authority)
	assert.Empty(t, table.Addresses)
}

func TestParseLookupTableWithoutAuthority(t *testing.T) {
	addrs := []types.Pubkey{pk(1), pk(2), pk(3)}
	table, err := ParseLookupTable(pk(9), consts.AddressLookupTableProgram, EncodeLookupTable(nil, 7, addrs))
	require.NoError(t, err)
	assert.Nil(t, table.Authority)
	assert.Equal(t, addrs, table.Addresses)
}

func TestParseLookupTableChecksOwner(t *testing.T) {
	auth := pk(0xAA)
	data := EncodeLookupTable(&auth, 1, []types.Pubkey{pk(1)})
	_, err := ParseLookupTable(pk(9), consts.SystemProgram, data)
	assert.ErrorIs(t, err, ErrInvalidLookupTable)
	assert.ErrorIs(t, err, alt.ErrInvalidAccountOwner)
}

func TestLookupTableAddress(t *testing.T) {
	auth := pk(0xAA)
	slot := binary.LittleEndian.AppendUint64(nil, 5)
	want, _, err := FindProgramAddress(consts.AddressLookupTableProgram, auth[:], slot)
	require.NoError(t, err)
	assert.Equal(t, want, LookupTableAddress(auth, 5))
	assert.NotEqual(t, want, LookupTableAddress(auth, 6))
}

func TestParseLookupTableRejectsGarbage(t *testing.T) {
	owner := consts.AddressLookupTableProgram
	_, err := ParseLookupTable(pk(1), owner, make([]byte, 10))
	assert.ErrorIs(t, err, ErrInvalidLookupTable)

	_, err = ParseLookupTable(pk(1), owner, make([]byte, consts.AddressLookupTableMetaSize))
	assert.ErrorIs(t, err, ErrInvalidLookupTable, "类型标记为 0")

	data := EncodeLookupTable(nil, 0, []types.Pubkey{pk(1)})
	_, err = ParseLookupTable(pk(1), owner, data[:len(data)-1])
	assert.ErrorIs(t, err, ErrInvalidLookupTable)
}

func TestFindProgramAddress(t *testing.T) {
	a, _, err := FindProgramAddress(consts.IterativeResolverProgram, []byte("foo"))
	require.NoError(t, err)
	b := MustFindProgramAddress(consts.IterativeResolverProgram, []byte("foo"))
	assert.Equal(t, a, b)

	_, _, err = FindProgramAddress(consts.IterativeResolverProgram, make([]byte, 33))
	assert.Error(t, err)
}
