package soft

import (
	"runtime"
	"sync"
)

func workerCount(configured int) int {
	if configured > 0 {
		return configured
	}
	return runtime.GOMAXPROCS(0)
}

// parallelRows splits [0, height) into contiguous bands and runs fn on each
// band in its own goroutine. It returns once every band is done.
func parallelRows(height, workers int, fn func(y0, y1 int)) {
	if workers < 1 {
		workers = 1
	}
	if workers > height {
		workers = height
	}
	if workers <= 1 {
		fn(0, height)
		return
	}

	rowsPerWorker := (height + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < height; start += rowsPerWorker {
		end := start + rowsPerWorker
		if end > height {
			end = height
		}
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			fn(y0, y1)
		}(start, end)
	}
	wg.Wait()
}
