package splat

import (
	"runtime"
	"sync"
)

// parallelFor splits [0, n) into contiguous ranges, one per worker, and runs
// fn on each range concurrently. Ranges are disjoint, so workers never touch
// the same elements. fn must not panic across goroutines.
func parallelFor(n int, fn func(begin, end int)) {
	if n <= 0 {
		return
	}
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}
	step := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for begin := 0; begin < n; begin += step {
		end := begin + step
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(b, e int) {
			defer wg.Done()
			fn(b, e)
		}(begin, end)
	}
	wg.Wait()
}
