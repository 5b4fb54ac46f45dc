package bus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"

	"packagekit/internal/config"
	"packagekit/internal/enum"
	"packagekit/internal/logging"
	"packagekit/internal/pkerr"
)

const (
	DBusService         = "org.freedesktop.DBus"
	DBusPath            = dbus.ObjectPath("/org/freedesktop/DBus")
	PropertiesInterface = "org.freedesktop.DBus.Properties"

	nameOwnerChanged = DBusService + ".NameOwnerChanged"
	signalBuffer     = 64
)

// Proxy issues method calls on one remote object. dbus.BusObject satisfies it.
type Proxy interface {
	GoWithContext(ctx context.Context, method string, flags dbus.Flags, ch chan *dbus.Call, args ...interface{}) *dbus.Call
}

// Backend is the slice of a bus connection the Connection uses.
type Backend interface {
	Object(dest string, path dbus.ObjectPath) Proxy
	AddMatchSignal(options ...dbus.MatchOption) error
	Signal(ch chan<- *dbus.Signal)
	RemoveSignal(ch chan<- *dbus.Signal)
	Close() error
}

// Options configures a Connection.
type Options struct {
	Address    string
	Service    string
	ObjectPath string
	Interface  string
	Logger     *slog.Logger
	// Dial replaces the real bus; used by tests.
	Dial func(address string) (Backend, error)
}

// OptionsFromConfig builds Options from the [bus] section.
func OptionsFromConfig(cfg config.Bus, logger *slog.Logger) Options {
	return Options{
		Address:    cfg.Address,
		Service:    cfg.Service,
		ObjectPath: cfg.ObjectPath,
		Interface:  cfg.Interface,
		Logger:     logger,
	}
}

func (o Options) withDefaults() Options {
	def := config.Default().Bus
	if o.Address == "" {
		o.Address = def.Address
	}
	if o.Service == "" {
		o.Service = def.Service
	}
	if o.ObjectPath == "" {
		o.ObjectPath = def.ObjectPath
	}
	if o.Interface == "" {
		o.Interface = def.Interface
	}
	if o.Dial == nil {
		o.Dial = dialBus
	}
	return o
}

type observer struct {
	id uint64
	fn func(Event)
}

// Connection is a live link to the daemon.
type Connection struct {
	opts    Options
	logger  *slog.Logger
	backend Backend
	service Proxy
	props   Proxy
	owner   Proxy
	signals chan *dbus.Signal
	done    chan struct{}

	mu        sync.Mutex
	observers []observer
	nextID    uint64

	// refs is guarded by sharedMu.
	refs      int
	closeOnce sync.Once
}

var (
	sharedMu sync.Mutex
	shared   *Connection
)

// Acquire returns the process-wide Connection, dialing it on first use. Every
// successful Acquire must be paired with Release. Options are only honoured
// by the call that dials.
func Acquire(opts Options) (*Connection, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if shared != nil {
		shared.refs++
		return shared, nil
	}
	conn, err := open(opts)
	if err != nil {
		return nil, err
	}
	shared = conn
	return conn, nil
}

// Open dials a private Connection that is not shared through Acquire.
func Open(opts Options) (*Connection, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	return open(opts)
}

func open(opts Options) (*Connection, error) {
	opts = opts.withDefaults()
	logger := logging.NewComponentLogger(opts.Logger, "bus")

	backend, err := opts.Dial(opts.Address)
	if err != nil {
		return nil, pkerr.Wrap(pkerr.ErrTransportUnavailable, "connect", "cannot reach the system message bus; start the dbus system service", err)
	}

	c := &Connection{
		opts:    opts,
		logger:  logger,
		backend: backend,
		service: backend.Object(opts.Service, dbus.ObjectPath(opts.ObjectPath)),
		props:   backend.Object(opts.Service, dbus.ObjectPath(opts.ObjectPath)),
		owner:   backend.Object(DBusService, DBusPath),
		signals: make(chan *dbus.Signal, signalBuffer),
		done:    make(chan struct{}),
		refs:    1,
	}

	if err := c.subscribe(); err != nil {
		_ = backend.Close()
		return nil, pkerr.Wrap(pkerr.ErrTransportUnavailable, "subscribe", "", err)
	}
	go c.run()

	logger.Debug("bus connection established",
		logging.String("address", opts.Address),
		logging.String("service", opts.Service),
	)
	return c, nil
}

func (c *Connection) subscribe() error {
	if err := c.backend.AddMatchSignal(
		dbus.WithMatchObjectPath(dbus.ObjectPath(c.opts.ObjectPath)),
		dbus.WithMatchInterface(c.opts.Interface),
	); err != nil {
		return fmt.Errorf("match daemon signals: %w", err)
	}
	if err := c.backend.AddMatchSignal(
		dbus.WithMatchSender(DBusService),
		dbus.WithMatchInterface(DBusService),
		dbus.WithMatchMember("NameOwnerChanged"),
		dbus.WithMatchArg(0, c.opts.Service),
	); err != nil {
		return fmt.Errorf("match name owner changes: %w", err)
	}
	c.backend.Signal(c.signals)
	return nil
}

// Release drops one reference and closes the Connection when none remain.
func (c *Connection) Release() {
	if c == nil {
		return
	}
	sharedMu.Lock()
	c.refs--
	last := c.refs <= 0
	if last && shared == c {
		shared = nil
	}
	sharedMu.Unlock()
	if last {
		c.close()
	}
}

func (c *Connection) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.backend.RemoveSignal(c.signals)
		if err := c.backend.Close(); err != nil {
			c.logger.Debug("bus close failed", logging.Error(err))
		}
		c.mu.Lock()
		c.observers = nil
		c.mu.Unlock()
		c.logger.Debug("bus connection closed")
	})
}

// Service is the daemon's main object.
func (c *Connection) Service() Proxy { return c.service }

// Properties is the properties interface on the daemon's main object.
func (c *Connection) Properties() Proxy { return c.props }

// Owner is the bus daemon, used for name ownership queries.
func (c *Connection) Owner() Proxy { return c.owner }

// Method qualifies a daemon method name with the daemon interface.
func (c *Connection) Method(name string) string {
	return c.opts.Interface + "." + name
}

// Interface is the daemon interface name.
func (c *Connection) Interface() string { return c.opts.Interface }

// Observe registers fn for every subsequent event. Events arrive in signal
// order on a single goroutine; fn must not block. The returned function
// removes the registration and is safe to call more than once.
func (c *Connection) Observe(fn func(Event)) func() {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.observers = append(c.observers, observer{id: id, fn: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, o := range c.observers {
			if o.id == id {
				c.observers = append(c.observers[:i:i], c.observers[i+1:]...)
				return
			}
		}
	}
}

// DaemonRunning asks the bus whether the daemon name currently has an owner.
func (c *Connection) DaemonRunning(ctx context.Context) (bool, error) {
	call := c.owner.GoWithContext(ctx, DBusService+".NameHasOwner", 0, make(chan *dbus.Call, 1), c.opts.Service)
	reply := <-call.Done
	var running bool
	if err := reply.Store(&running); err != nil {
		return false, pkerr.Normalize("name-has-owner", err)
	}
	return running, nil
}

func (c *Connection) run() {
	for {
		select {
		case <-c.done:
			return
		case sig, ok := <-c.signals:
			if !ok {
				return
			}
			if sig == nil {
				continue
			}
			if event, ok := c.translate(sig); ok {
				c.dispatch(event)
			}
		}
	}
}

func (c *Connection) dispatch(event Event) {
	c.mu.Lock()
	observers := append([]observer(nil), c.observers...)
	c.mu.Unlock()
	for _, o := range observers {
		o.fn(event)
	}
}

func (c *Connection) translate(sig *dbus.Signal) (Event, bool) {
	if sig.Name == nameOwnerChanged {
		return c.translateOwnerChange(sig)
	}
	if sig.Path != dbus.ObjectPath(c.opts.ObjectPath) {
		return Event{}, false
	}
	switch sig.Name {
	case c.Method("TransactionListChanged"):
		event := Event{Kind: TransactionListChanged}
		if len(sig.Body) > 0 {
			if ids, ok := sig.Body[0].([]string); ok {
				event.Transactions = ids
			}
		}
		return event, true
	case c.Method("UpdatesChanged"):
		return Event{Kind: UpdatesChanged}, true
	case c.Method("RepoListChanged"):
		return Event{Kind: RepoListChanged}, true
	case c.Method("RestartSchedule"):
		return Event{Kind: RestartSchedule}, true
	case c.Method("NetworkStateChanged"):
		text, ok := firstArg[string](sig)
		if !ok {
			c.logger.Debug("dropping malformed signal", logging.String("signal", sig.Name))
			return Event{}, false
		}
		return Event{Kind: NetworkStateChanged, Network: enum.Networks.FromString(text)}, true
	case c.Method("Locked"):
		locked, ok := firstArg[bool](sig)
		if !ok {
			c.logger.Debug("dropping malformed signal", logging.String("signal", sig.Name))
			return Event{}, false
		}
		return Event{Kind: Locked, Locked: locked}, true
	}
	return Event{}, false
}

func (c *Connection) translateOwnerChange(sig *dbus.Signal) (Event, bool) {
	if len(sig.Body) < 3 {
		return Event{}, false
	}
	name, _ := sig.Body[0].(string)
	oldOwner, _ := sig.Body[1].(string)
	newOwner, _ := sig.Body[2].(string)
	if name != c.opts.Service {
		return Event{}, false
	}
	switch {
	case oldOwner == "" && newOwner != "":
		c.logger.Info("daemon appeared on the bus", logging.String("owner", newOwner))
		return Event{Kind: ConnectionChanged, Connected: true}, true
	case oldOwner != "" && newOwner == "":
		c.logger.Info("daemon left the bus", logging.String("owner", oldOwner))
		return Event{Kind: ConnectionChanged, Connected: false}, true
	default:
		return Event{}, false
	}
}

func firstArg[T any](sig *dbus.Signal) (T, bool) {
	var zero T
	if len(sig.Body) == 0 {
		return zero, false
	}
	value, ok := sig.Body[0].(T)
	return value, ok
}
