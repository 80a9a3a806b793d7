package selection

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// BatchItem pairs a request with its outcome.
type BatchItem struct {
	Request Request
	Result  Result
	Err     error
}

// ResolveBatch resolves non-interactive requests concurrently with at most
// workers in flight (GOMAXPROCS when workers <= 0). Items come back in
// request order and carry their own errors; only a rejected batch or a
// done ctx fails the call as a whole.
func (r *Resolver) ResolveBatch(ctx context.Context, reqs []Request, workers int) ([]BatchItem, error) {
	for i, req := range reqs {
		if req.Mode == ModeInteractive && req.Manual == nil {
			return nil, fmt.Errorf("%w: request %d", ErrInteractiveBatch, i)
		}
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	items := make([]BatchItem, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.Resolve(gctx, req)
			items[i] = BatchItem{Request: req, Result: res, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return items, err
	}
	return items, nil
}
