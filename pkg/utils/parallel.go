package utils

import "sync"

// ParallelMap 用最多 workers 个 goroutine 并发执行 f，结果顺序与输入一致。
// 输入不超过 1 个或 workers <= 1 时直接串行执行。
func ParallelMap[T any, R any](input []T, workers int, f func(T) R) []R {
	result := make([]R, len(input))
	if len(input) == 0 {
		return result
	}
	if len(input) == 1 || workers <= 1 {
		for i, v := range input {
			result[i] = f(v)
		}
		return result
	}
	if workers > len(input) {
		workers = len(input)
	}

	idx := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range idx {
				result[i] = f(input[i])
			}
		}()
	}
	for i := range input {
		idx <- i
	}
	close(idx)
	wg.Wait()
	return result
}
