package pipeline

import (
	"context"
	"runtime"
	"sync"
)

type Worker[J any] func(ctx context.Context, index int, job J) error

// Run feeds jobs to a fixed pool of workers. The returned slice is parallel
// to jobs: errs[i] is the error of jobs[i], nil on success. Jobs not started
// before ctx is done report ctx.Err().
func Run[J any](ctx context.Context, jobs []J, workers int, fn Worker[J]) []error {
	if len(jobs) == 0 || fn == nil {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers < 1 {
			workers = 1
		}
	}
	workers = min(workers, len(jobs))

	indexes := make(chan int)
	errs := make([]error, len(jobs))
	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				if err := ctx.Err(); err != nil {
					errs[i] = err
					continue
				}
				errs[i] = fn(ctx, i, jobs[i])
			}
		}()
	}

	for i := range jobs {
		indexes <- i
	}
	close(indexes)
	wg.Wait()
	return errs
}

// FirstError returns the first non-nil error in job order.
func FirstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
