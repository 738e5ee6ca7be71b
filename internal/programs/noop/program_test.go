package noop

import (
	"context"
	"testing"

	"executor-resolver-sol/internal/consts"
	"executor-resolver-sol/internal/runtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopResolvesEmpty(t *testing.T) {
	rt := runtime.New(runtime.DefaultRent())
	rt.Register(Program())

	data, err := runtime.EncodeExecuteVaaV1([]byte("vaa"))
	require.NoError(t, err)

	out, err := rt.Execute(context.Background(), consts.NoopResolverProgram, data, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 0}, out.ReturnData)

	_, err = rt.Execute(context.Background(), consts.NoopResolverProgram, []byte{1, 2, 3, 4, 5, 6, 7, 8}, nil)
	assert.ErrorIs(t, err, runtime.ErrUnknownInstruction)

	_, err = rt.Execute(context.Background(), consts.NoopResolverProgram, data[:10], nil)
	assert.ErrorIs(t, err, runtime.ErrInvalidInstructionData)
}
