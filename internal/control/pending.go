package control

import (
	"context"
	"sync"
)

// Pending is the eventual result of an asynchronous operation.
type Pending[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

func newPending[T any]() *Pending[T] {
	return &Pending[T]{done: make(chan struct{})}
}

// resolve records the outcome; only the first call has any effect.
func (p *Pending[T]) resolve(value T, err error) bool {
	resolved := false
	p.once.Do(func() {
		p.value = value
		p.err = err
		resolved = true
		close(p.done)
	})
	return resolved
}

// Done is closed once the result is available.
func (p *Pending[T]) Done() <-chan struct{} {
	return p.done
}

// Result returns the outcome. It must only be called after Done is closed.
func (p *Pending[T]) Result() (T, error) {
	return p.value, p.err
}

// Wait blocks until the result is available or ctx ends. Ending ctx does not
// cancel the operation.
func (p *Pending[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
