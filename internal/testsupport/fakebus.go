package testsupport

import (
	"context"
	"sync"

	"github.com/godbus/dbus/v5"

	"packagekit/internal/bus"
)

// Handler answers one method call on a FakeBus.
type Handler func(args []any) ([]any, error)

// RecordedCall is a method call observed by a FakeBus.
type RecordedCall struct {
	Destination string
	Path        dbus.ObjectPath
	Method      string
	Args        []any
}

// FakeBus is an in-memory bus backend. Calls are answered asynchronously from
// registered handlers; Hold parks them until Flush or until their context is
// cancelled.
type FakeBus struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []RecordedCall
	signals  []chan<- *dbus.Signal
	matches  int
	dials    int
	closed   bool
	gate     chan struct{}
	inflight sync.WaitGroup

	// DialErr makes Dial fail.
	DialErr error
}

// NewFakeBus returns an empty FakeBus; unhandled methods fail with
// UnknownMethod.
func NewFakeBus() *FakeBus {
	return &FakeBus{handlers: make(map[string]Handler)}
}

// Dial satisfies bus.Options.Dial.
func (b *FakeBus) Dial(string) (bus.Backend, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.DialErr != nil {
		return nil, b.DialErr
	}
	b.dials++
	b.closed = false
	return b, nil
}

// Handle registers h for a fully qualified method name.
func (b *FakeBus) Handle(method string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[method] = h
}

// Reply answers method with a fixed body.
func (b *FakeBus) Reply(method string, body ...any) {
	b.Handle(method, func([]any) ([]any, error) { return body, nil })
}

// Fail answers method with err.
func (b *FakeBus) Fail(method string, err error) {
	b.Handle(method, func([]any) ([]any, error) { return nil, err })
}

// Hold parks every subsequent call until Flush.
func (b *FakeBus) Hold() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gate == nil {
		b.gate = make(chan struct{})
	}
}

// Flush answers every parked call and stops holding.
func (b *FakeBus) Flush() {
	b.mu.Lock()
	gate := b.gate
	b.gate = nil
	b.mu.Unlock()
	if gate != nil {
		close(gate)
	}
}

// Wait blocks until every call issued so far has been answered.
func (b *FakeBus) Wait() {
	b.inflight.Wait()
}

// Emit delivers sig to every registered signal channel.
func (b *FakeBus) Emit(sig *dbus.Signal) {
	b.mu.Lock()
	channels := append([]chan<- *dbus.Signal(nil), b.signals...)
	b.mu.Unlock()
	for _, ch := range channels {
		ch <- sig
	}
}

// Calls returns the calls observed so far.
func (b *FakeBus) Calls() []RecordedCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]RecordedCall(nil), b.calls...)
}

// Dials reports how many connections were opened.
func (b *FakeBus) Dials() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dials
}

// Matches reports how many match rules were installed.
func (b *FakeBus) Matches() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.matches
}

// Closed reports whether the last connection was closed.
func (b *FakeBus) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *FakeBus) Object(dest string, path dbus.ObjectPath) bus.Proxy {
	return &fakeProxy{bus: b, dest: dest, path: path}
}

func (b *FakeBus) AddMatchSignal(...dbus.MatchOption) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.matches++
	return nil
}

func (b *FakeBus) Signal(ch chan<- *dbus.Signal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.signals = append(b.signals, ch)
}

func (b *FakeBus) RemoveSignal(ch chan<- *dbus.Signal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, c := range b.signals {
		if c == ch {
			b.signals = append(b.signals[:i], b.signals[i+1:]...)
			return
		}
	}
}

func (b *FakeBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

type fakeProxy struct {
	bus  *FakeBus
	dest string
	path dbus.ObjectPath
}

func (p *fakeProxy) GoWithContext(ctx context.Context, method string, _ dbus.Flags, ch chan *dbus.Call, args ...interface{}) *dbus.Call {
	if ch == nil {
		ch = make(chan *dbus.Call, 1)
	}
	call := &dbus.Call{Destination: p.dest, Path: p.path, Method: method, Args: args, Done: ch}

	b := p.bus
	b.mu.Lock()
	b.calls = append(b.calls, RecordedCall{Destination: p.dest, Path: p.path, Method: method, Args: args})
	handler := b.handlers[method]
	gate := b.gate
	b.inflight.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.inflight.Done()
		if gate != nil {
			select {
			case <-ctx.Done():
				call.Err = ctx.Err()
				ch <- call
				return
			case <-gate:
			}
		}
		if err := ctx.Err(); err != nil {
			call.Err = err
		} else if handler == nil {
			call.Err = dbus.Error{Name: "org.freedesktop.DBus.Error.UnknownMethod", Body: []any{method}}
		} else {
			call.Body, call.Err = handler(args)
		}
		ch <- call
	}()
	return call
}
