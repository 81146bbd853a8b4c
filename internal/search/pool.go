package search

import (
	"context"
	"sync"

	"github.com/nvlabs/deepwatch/internal/errs"
)

// Job is one unit of pool work: run it and return its result or error.
type Job func(ctx context.Context) (interface{}, error)

// RunPool executes jobs with at most maxWorkers concurrent, using a
// semaphore + sync.WaitGroup fan-out. Results preserve job order; ctx
// cancellation (including caller-triggered interrupt) stops launching new
// jobs and returns errs.Interrupted once any already-running job observes
// it.
func RunPool(ctx context.Context, jobs []Job, maxWorkers int) ([]interface{}, error) {
	if len(jobs) == 0 {
		return nil, nil
	}
	if maxWorkers <= 0 || maxWorkers > len(jobs) {
		maxWorkers = len(jobs)
	}

	results := make([]interface{}, len(jobs))
	errsOut := make([]error, len(jobs))
	sem := make(chan struct{}, maxWorkers)
	var wg sync.WaitGroup

	for i, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, j Job) {
			defer wg.Done()
			defer func() { <-sem }()
			r, err := j(ctx)
			results[idx] = r
			errsOut[idx] = err
		}(i, job)
	}
	wg.Wait()

	if ctx.Err() != nil {
		return results, errs.Interrupted
	}
	return results, nil
}
