package overflow

import (
	"fmt"
	"math"
	"testing"

	"executor-resolver-sol/internal/consts"
	"executor-resolver-sol/internal/runtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextSizeGrid(t *testing.T) {
	sizes := []uint64{0, 1, 13, 10240, 10 * 1024 * 1024, 10*1024*1024 - 10240, 10*1024*1024 - 10239, 10*1024*1024 + 5}
	ceilings := []uint64{0, 1, 10240}
	maxes := []uint64{0, 13, 10240, 10 * 1024 * 1024}
	for _, cur := range sizes {
		for _, ceiling := range ceilings {
			for _, max := range maxes {
				t.Run(fmt.Sprintf("%d+%d<=%d", cur, ceiling, max), func(t *testing.T) {
					got, err := NextSize(cur, ceiling, max)
					require.NoError(t, err)
					want := cur + ceiling
					if want > max {
						want = max
					}
					assert.Equal(t, want, got)
				})
			}
		}
	}
}

func TestNextSizeBoundary(t *testing.T) {
	const limit = consts.MaxPermittedDataLength
	const step = consts.MaxPermittedDataIncrease

	got, err := NextSize(limit-step, step, limit)
	require.NoError(t, err)
	assert.Equal(t, uint64(limit), got)

	got, err = NextSize(limit-step+1, step, limit)
	require.NoError(t, err)
	assert.Equal(t, uint64(limit), got, "已超过 max-ceiling 时截断到 max")

	got, err = NextSize(limit-step-1, step, limit)
	require.NoError(t, err)
	assert.Equal(t, uint64(limit-1), got)

	_, err = NextSize(math.MaxUint64, 1, math.MaxUint64)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)

	_, err = GrowSize(-1)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)

	n, err := GrowSize(RecordInitSize)
	require.NoError(t, err)
	assert.Equal(t, RecordInitSize+step, n)
}

func TestTopUp(t *testing.T) {
	rent := runtime.DefaultRent()
	need := rent.MinimumBalance(1000)

	assert.Equal(t, need, TopUp(rent, 1000, 0))
	assert.Equal(t, uint64(1), TopUp(rent, 1000, need-1))
	assert.Equal(t, uint64(0), TopUp(rent, 1000, need))
	assert.Equal(t, uint64(0), TopUp(rent, 1000, need+500))
}
