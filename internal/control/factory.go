package control

import (
	"log/slog"
	"sync"

	"packagekit/internal/bus"
)

// Options configures Acquire.
type Options struct {
	Bus    bus.Options
	Logger *slog.Logger
}

var (
	factoryMu sync.Mutex
	live      *Control
)

// Acquire returns the process-wide Control, building it (and acquiring the
// shared bus Connection) on first use. Pair every Acquire with Release.
func Acquire(opts Options) (*Control, error) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	if live != nil {
		live.refs++
		return live, nil
	}
	if opts.Bus.Logger == nil {
		opts.Bus.Logger = opts.Logger
	}
	conn, err := bus.Acquire(opts.Bus)
	if err != nil {
		return nil, err
	}
	live = New(conn, opts.Logger)
	return live, nil
}

// Release drops one reference. The last release cancels pending calls,
// resolves them with ErrClosed, stops event delivery, and releases the bus
// connection.
func (c *Control) Release() {
	if c == nil {
		return
	}
	factoryMu.Lock()
	c.refs--
	last := c.refs <= 0
	if last && live == c {
		live = nil
	}
	factoryMu.Unlock()
	if last {
		c.teardown()
	}
}
