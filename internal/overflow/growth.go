package overflow

import (
	"fmt"
	"math"

	"executor-resolver-sol/internal/consts"
	"executor-resolver-sol/internal/runtime"
)

// NextSize 单步扩容后的大小：min(cur + ceiling, max)
func NextSize(cur, ceiling, max uint64) (uint64, error) {
	sum := cur + ceiling
	if sum < cur {
		return 0, fmt.Errorf("%w: %d + %d", ErrArithmeticOverflow, cur, ceiling)
	}
	return min(sum, max), nil
}

// GrowSize 按运行时限制计算结果账户的下一个大小
func GrowSize(cur int) (int, error) {
	if cur < 0 {
		return 0, fmt.Errorf("%w: negative size %d", ErrArithmeticOverflow, cur)
	}
	next, err := NextSize(uint64(cur), consts.MaxPermittedDataIncrease, consts.MaxPermittedDataLength)
	if err != nil {
		return 0, err
	}
	if next > math.MaxInt {
		return 0, fmt.Errorf("%w: size %d does not fit int", ErrArithmeticOverflow, next)
	}
	return int(next), nil
}

// TopUp 扩容前需要补足的 lamports：max(0, rent(newSize) - balance)
func TopUp(rent runtime.Rent, newSize int, balance uint64) uint64 {
	need := rent.MinimumBalance(newSize)
	if need <= balance {
		return 0
	}
	return need - balance
}
