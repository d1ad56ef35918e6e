package worker

import (
	"context"

	"newsfax-factcheck/internal/usecase"
)

var _ usecase.Dispatcher = (*PoolDispatcher)(nil)

// PoolDispatcher runs tasks on the pool, falling back to a detached
// goroutine when the queue is saturated. A claimed URL must always get a
// runner, so Dispatch cannot drop work.
type PoolDispatcher struct {
	pool *Pool
	base context.Context
}

// NewPoolDispatcher wraps pool. base bounds fallback goroutines and should
// be the application lifetime context.
func NewPoolDispatcher(base context.Context, pool *Pool) *PoolDispatcher {
	return &PoolDispatcher{pool: pool, base: base}
}

func (d *PoolDispatcher) Dispatch(task func(ctx context.Context)) {
	err := d.pool.Submit(func(ctx context.Context) error {
		task(ctx)
		return nil
	})
	if err != nil {
		go task(d.base)
	}
}
