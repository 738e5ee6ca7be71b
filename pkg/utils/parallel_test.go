package utils

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParallelMap(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		result := ParallelMap([]int{}, 4, func(i int) int { return i })
		assert.Empty(t, result)
	})

	t.Run("single worker keeps order", func(t *testing.T) {
		result := ParallelMap([]int{1, 2, 3}, 1, func(i int) int { return i * 2 })
		assert.Equal(t, []int{2, 4, 6}, result)
	})

	t.Run("many workers keep order", func(t *testing.T) {
		input := make([]int, 1000)
		for i := range input {
			input[i] = i
		}
		result := ParallelMap(input, 16, func(i int) int { return i * i })
		for i, v := range result {
			if !assert.Equal(t, i*i, v) {
				break
			}
		}
	})

	t.Run("concurrency bounded by workers", func(t *testing.T) {
		var current, peak int32
		input := make([]int, 40)
		ParallelMap(input, 5, func(int) int {
			n := atomic.AddInt32(&current, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&current, -1)
			return 0
		})
		assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(5))
		assert.Greater(t, atomic.LoadInt32(&peak), int32(1))
	})
}
