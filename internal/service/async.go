package service

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"pharmadash/internal/model"
)

// Future is the pending result of an asynchronous store operation.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns an already completed future.
func Resolved[T any](val T, err error) *Future[T] {
	f := newFuture[T]()
	f.resolve(val, err)
	return f
}

func (f *Future[T]) resolve(val T, err error) {
	f.val, f.err = val, err
	close(f.done)
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Await blocks until the operation finishes or ctx is done.
// Giving up on ctx does not cancel the operation itself.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// AsyncStore is the asynchronous face of the record store used by form controllers.
type AsyncStore interface {
	CreateAsync(ctx context.Context, kind model.Kind, fields map[string]any) *Future[*model.Record]
	UpdateAsync(ctx context.Context, kind model.Kind, id string, patch map[string]any, opts UpdateOptions) *Future[*model.Record]
	DeleteAsync(ctx context.Context, kind model.Kind, id string) *Future[struct{}]
}

// Async runs RecordService mutations in the background after a simulated network latency.
// Once started, a mutation runs to completion even if the caller stops waiting.
type Async struct {
	svc     RecordService
	latency time.Duration
	jitter  time.Duration
	wg      sync.WaitGroup
}

// NewAsync wraps svc. Each call waits latency plus a random share of jitter before running.
func NewAsync(svc RecordService, latency, jitter time.Duration) *Async {
	return &Async{svc: svc, latency: latency, jitter: jitter}
}

var _ AsyncStore = (*Async)(nil)

// Wait blocks until every started mutation has finished.
func (a *Async) Wait() {
	a.wg.Wait()
}

func (a *Async) delay() time.Duration {
	d := a.latency
	if a.jitter > 0 {
		d += rand.N(a.jitter)
	}
	return d
}

func run[T any](a *Async, ctx context.Context, op func(context.Context) (T, error)) *Future[T] {
	f := newFuture[T]()
	ctx = context.WithoutCancel(ctx)
	d := a.delay()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if d > 0 {
			time.Sleep(d)
		}
		f.resolve(op(ctx))
	}()
	return f
}

func (a *Async) CreateAsync(ctx context.Context, kind model.Kind, fields map[string]any) *Future[*model.Record] {
	return run(a, ctx, func(ctx context.Context) (*model.Record, error) {
		return a.svc.Create(ctx, kind, fields)
	})
}

func (a *Async) UpdateAsync(ctx context.Context, kind model.Kind, id string, patch map[string]any, opts UpdateOptions) *Future[*model.Record] {
	return run(a, ctx, func(ctx context.Context) (*model.Record, error) {
		return a.svc.Update(ctx, kind, id, patch, opts)
	})
}

func (a *Async) DeleteAsync(ctx context.Context, kind model.Kind, id string) *Future[struct{}] {
	return run(a, ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.svc.Delete(ctx, kind, id)
	})
}
