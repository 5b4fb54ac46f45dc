package control

import (
	"context"
	"sync"
	"sync/atomic"
	"weak"
)

// pendingCall is the bookkeeping for one in-flight remote call.
type pendingCall struct {
	op     string
	owner  weak.Pointer[Control]
	cancel context.CancelFunc
	active atomic.Bool
	// abort resolves the caller's Pending with err; used by teardown.
	abort func(err error)
}

// registry tracks in-flight calls so teardown can cancel them.
type registry struct {
	mu    sync.Mutex
	calls map[*pendingCall]struct{}
}

func newRegistry() *registry {
	return &registry{calls: make(map[*pendingCall]struct{})}
}

func (r *registry) register(call *pendingCall) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[call] = struct{}{}
}

// deregister is idempotent.
func (r *registry) deregister(call *pendingCall) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.calls, call)
}

// cancelAll requests cancellation of every active call and empties the
// registry. It does not wait for the transport to acknowledge.
func (r *registry) cancelAll() []*pendingCall {
	r.mu.Lock()
	calls := make([]*pendingCall, 0, len(r.calls))
	for call := range r.calls {
		calls = append(calls, call)
	}
	clear(r.calls)
	r.mu.Unlock()

	for _, call := range calls {
		if call.active.Load() {
			call.cancel()
		}
	}
	return calls
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}
