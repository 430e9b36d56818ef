package pairwise

import (
	"context"
	"runtime"
	"sync"

	"github.com/MayerT1/FSH-Python3-Old/logging"
)

// BatchResult pairs a request with its outcome. Exactly one of Result and
// Err is set.
type BatchResult struct {
	Request Request
	Result  *Result
	Err     error
}

// Recorder receives the outcome of every request of a batch, including
// those never started after cancellation. req carries the block size the
// pipeline resolved for it. Implementations must be safe for concurrent use.
type Recorder interface {
	Record(ctx context.Context, req Request, res *Result, runErr error) error
}

// RunBatch runs every request on a fixed pool of workers. Requests share no
// state, so a failed pair never affects the others. When ctx is cancelled
// no further requests are started; those report ctx.Err(). Results come
// back in request order. workers <= 0 uses GOMAXPROCS. rec may be nil.
func RunBatch(ctx context.Context, p *Pipeline, reqs []Request, workers int, rec Recorder) []BatchResult {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(reqs) {
		workers = len(reqs)
	}

	logger := p.logger.WithFields(logging.Fields{
		"pairs":   len(reqs),
		"workers": workers,
	})
	logger.Info("Starting batch")

	results := make([]BatchResult, len(reqs))
	for i, req := range reqs {
		results[i].Request = req
	}

	// outcomes are still recorded once ctx is cancelled
	recCtx := context.WithoutCancel(ctx)
	record := func(req Request, res *Result, err error) {
		if rec == nil {
			return
		}
		req.BlockSize = p.BlockSize(req)
		if recErr := rec.Record(recCtx, req, res, err); recErr != nil {
			logger.Warn("Failed to record pair result", logging.Fields{
				"pair":  req.Key(),
				"error": recErr.Error(),
			})
		}
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	for _i := 0; _i < workers; _i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for idx := range jobs {
				req := results[idx].Request
				res, err := p.Run(ctx, req)
				results[idx].Result = res
				results[idx].Err = err
				record(req, res, err)
			}
		}()
	}

	next := 0
dispatch:
	for ; next < len(reqs); next++ {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- next:
		}
	}
	close(jobs)
	wg.Wait()

	for i := next; i < len(reqs); i++ {
		results[i].Err = ctx.Err()
		record(results[i].Request, nil, results[i].Err)
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	logger.Info("Batch completed", logging.Fields{
		"succeeded": len(reqs) - failed,
		"failed":    failed,
	})
	return results
}
