package control

import (
	"context"
	"log/slog"
	"sync"
	"time"
	"weak"

	"github.com/godbus/dbus/v5"

	"packagekit/internal/bus"
	"packagekit/internal/logging"
	"packagekit/internal/pkerr"
)

// Event is a daemon notification re-emitted by a Control.
type Event = bus.Event

type listener struct {
	id uint64
	fn func(Event)
}

// Control is a handle on the daemon. It is safe for concurrent use.
type Control struct {
	conn   *bus.Connection
	logger *slog.Logger
	calls  *registry

	mu     sync.RWMutex
	closed bool
	props  Properties

	listenersMu sync.Mutex
	listeners   []listener
	nextID      uint64

	stopObserving func()
	// refs is guarded by factoryMu.
	refs      int
	closeOnce sync.Once
}

// New builds a Control on conn and takes ownership of one reference to it;
// the reference is released when the Control is.
func New(conn *bus.Connection, logger *slog.Logger) *Control {
	c := &Control{
		conn:   conn,
		logger: logging.NewComponentLogger(logger, "control"),
		calls:  newRegistry(),
		refs:   1,
	}
	self := weak.Make(c)
	c.stopObserving = conn.Observe(func(event bus.Event) {
		if ctl := self.Value(); ctl != nil {
			ctl.emit(event)
		}
	})
	return c
}

// Subscribe registers fn for daemon events until the returned function is
// called or the Control is released. fn runs on the bus dispatch goroutine
// and must not block.
func (c *Control) Subscribe(fn func(Event)) func() {
	c.listenersMu.Lock()
	c.nextID++
	id := c.nextID
	c.listeners = append(c.listeners, listener{id: id, fn: fn})
	c.listenersMu.Unlock()

	return func() {
		c.listenersMu.Lock()
		defer c.listenersMu.Unlock()
		for i, l := range c.listeners {
			if l.id == id {
				c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

func (c *Control) emit(event Event) {
	if c.isClosed() {
		return
	}
	c.listenersMu.Lock()
	listeners := append([]listener(nil), c.listeners...)
	c.listenersMu.Unlock()
	for _, l := range listeners {
		l.fn(event)
	}
}

func (c *Control) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// InFlight reports how many calls are awaiting a reply.
func (c *Control) InFlight() int {
	return c.calls.len()
}

// DaemonRunning reports whether the daemon currently owns its bus name.
func (c *Control) DaemonRunning(ctx context.Context) (bool, error) {
	if c.isClosed() {
		return false, pkerr.Wrap(pkerr.ErrClosed, "daemon-running", "", nil)
	}
	return c.conn.DaemonRunning(ctx)
}

// teardown cancels outstanding calls, resolves their results with ErrClosed,
// stops event delivery, and releases the bus connection.
func (c *Control) teardown() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()

		aborted := c.calls.cancelAll()
		for _, call := range aborted {
			call.abort(pkerr.Wrap(pkerr.ErrClosed, call.op, "released before reply", nil))
		}
		if len(aborted) > 0 {
			c.logger.Debug("cancelled pending calls", logging.Int("count", len(aborted)))
		}

		c.stopObserving()
		c.listenersMu.Lock()
		c.listeners = nil
		c.listenersMu.Unlock()
		c.conn.Release()
	})
}

// begin issues method on proxy and returns the Pending its reply resolves.
func begin[T any](c *Control, ctx context.Context, op string, proxy bus.Proxy, method string, decode func(*Control, *dbus.Call) (T, error), args ...any) *Pending[T] {
	result := newPending[T]()
	callCtx, cancel := context.WithCancel(ctx)
	call := &pendingCall{
		op:     op,
		owner:  weak.Make(c),
		cancel: cancel,
		abort: func(err error) {
			var zero T
			result.resolve(zero, err)
		},
	}
	call.active.Store(true)

	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		cancel()
		call.abort(pkerr.Wrap(pkerr.ErrClosed, op, "", nil))
		return result
	}
	c.calls.register(call)
	c.mu.RUnlock()

	replies := make(chan *dbus.Call, 1)
	proxy.GoWithContext(callCtx, method, 0, replies, args...)
	go complete(call, replies, result, decode, c.logger, time.Now())
	return result
}

func complete[T any](call *pendingCall, replies <-chan *dbus.Call, result *Pending[T], decode func(*Control, *dbus.Call) (T, error), logger *slog.Logger, started time.Time) {
	defer call.cancel()
	reply := <-replies
	call.active.Store(false)

	owner := call.owner.Value()
	if owner == nil {
		return
	}
	if owner.isClosed() {
		owner.calls.deregister(call)
		return
	}

	value, err := decode(owner, reply)
	owner.calls.deregister(call)
	if err != nil {
		logger.Debug("call failed",
			logging.String(logging.FieldOperation, call.op),
			logging.Duration("elapsed", time.Since(started)),
			logging.Error(err),
		)
	} else {
		logger.Debug("call completed",
			logging.String(logging.FieldOperation, call.op),
			logging.Duration("elapsed", time.Since(started)),
		)
	}
	result.resolve(value, err)
}

// storeReply normalizes transport errors and decodes the reply body.
func storeReply(op string, reply *dbus.Call, dst ...any) error {
	if reply.Err != nil {
		return pkerr.Normalize(op, reply.Err)
	}
	if err := reply.Store(dst...); err != nil {
		return pkerr.Wrap(pkerr.ErrInvalidWireValue, op, "unexpected reply", err)
	}
	return nil
}

func decodeValue[T any](op string) func(*Control, *dbus.Call) (T, error) {
	return func(_ *Control, reply *dbus.Call) (T, error) {
		var out T
		err := storeReply(op, reply, &out)
		return out, err
	}
}
