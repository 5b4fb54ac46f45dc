package netstate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pilebones/go-udev/netlink"

	"packagekit/internal/config"
	"packagekit/internal/enum"
	"packagekit/internal/logging"
)

// Carrier changes do not always raise a uevent, so a running monitor also
// re-probes on this interval.
const pollInterval = 30 * time.Second

// Option configures a Monitor.
type Option func(*Monitor)

// WithProber replaces interface discovery (primarily for tests).
func WithProber(p Prober) Option {
	return func(m *Monitor) {
		if p != nil {
			m.probe = p
		}
	}
}

// WithLogger sets the monitor logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Monitor tracks network reachability.
type Monitor struct {
	force  enum.Network
	watch  bool
	probe  Prober
	logger *slog.Logger

	mu        sync.Mutex
	state     enum.Network
	listeners map[int]func(enum.Network)
	nextID    int
	conn      *netlink.UEventConn
	quit      chan struct{}
	running   bool
}

// New builds a monitor from the network section of cfg.
func New(cfg *config.Config, opts ...Option) *Monitor {
	m := &Monitor{
		probe:     SystemInterfaces,
		logger:    logging.NewNop(),
		listeners: make(map[int]func(enum.Network)),
	}
	if cfg != nil {
		m.watch = cfg.Network.Monitor
		switch cfg.Network.Force {
		case "online":
			m.force = enum.NetworkOnline
		case "offline":
			m.force = enum.NetworkOffline
		}
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.NewComponentLogger(m.logger, "netstate")
	return m
}

// Static returns a monitor pinned to state.
func Static(state enum.Network) *Monitor {
	return &Monitor{
		force:     state,
		probe:     SystemInterfaces,
		logger:    logging.NewNop(),
		listeners: make(map[int]func(enum.Network)),
	}
}

// State returns the current network state. A running monitor answers from
// its cache; otherwise interfaces are probed on every call.
func (m *Monitor) State() enum.Network {
	if m == nil {
		return enum.NetworkUnknown
	}
	if m.force != enum.NetworkUnknown {
		return m.force
	}
	m.mu.Lock()
	if m.running {
		state := m.state
		m.mu.Unlock()
		return state
	}
	m.mu.Unlock()
	return m.refresh()
}

// Online reports whether network-bound work may start.
func (m *Monitor) Online(context.Context) bool {
	return m.State().Online()
}

// Subscribe registers fn for state changes and returns its removal func.
func (m *Monitor) Subscribe(fn func(enum.Network)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *Monitor) refresh() enum.Network {
	ifaces, err := m.probe()
	var state enum.Network
	if err != nil {
		m.logger.Debug("interface probe failed", logging.Error(err))
		state = enum.NetworkUnknown
	} else {
		state = Classify(ifaces)
	}

	m.mu.Lock()
	previous := m.state
	m.state = state
	var notify []func(enum.Network)
	if previous != state && previous != enum.NetworkUnknown {
		for _, fn := range m.listeners {
			notify = append(notify, fn)
		}
	}
	m.mu.Unlock()

	if len(notify) > 0 {
		m.logger.Info("network state changed",
			logging.String(logging.FieldEventType, "network_state_changed"),
			logging.String("from", previous.String()),
			logging.String("to", state.String()),
		)
	}
	for _, fn := range notify {
		fn(state)
	}
	return state
}

// Start begins watching for udev net events. Failure to open the netlink
// socket is logged and the monitor keeps polling.
func (m *Monitor) Start(ctx context.Context) error {
	if m == nil || m.force != enum.NetworkUnknown || !m.watch {
		return nil
	}

	m.refresh()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		m.logger.Warn("failed to connect to netlink socket; network state will be polled",
			logging.Error(err),
			logging.String(logging.FieldEventType, "netlink_connect_failed"),
			logging.String(logging.FieldErrorHint, "ensure the process may open netlink sockets"),
			logging.String(logging.FieldImpact, "network changes detected on the poll interval only"),
		)
		conn = nil
	}

	m.conn = conn
	m.quit = make(chan struct{})
	m.running = true

	quit := m.quit
	go m.monitorLoop(ctx, conn, quit)

	m.logger.Debug("network monitor started",
		logging.String(logging.FieldEventType, "netstate_monitor_started"),
		logging.Bool("netlink", conn != nil),
	)
	return nil
}

// Stop shuts the monitor down.
func (m *Monitor) Stop() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	if m.quit != nil {
		close(m.quit)
		m.quit = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.running = false
}

// Running reports whether the monitor is watching for changes.
func (m *Monitor) Running() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Monitor) monitorLoop(ctx context.Context, conn *netlink.UEventConn, quit <-chan struct{}) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var queue chan netlink.UEvent
	var errs chan error
	var monitorQuit chan struct{}
	if conn != nil {
		queue = make(chan netlink.UEvent)
		errs = make(chan error)
		monitorQuit = conn.Monitor(queue, errs, netMatcher())
		defer close(monitorQuit)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-quit:
			return
		case <-ticker.C:
			m.refresh()
		case uevent := <-queue:
			m.logger.Debug("net uevent",
				logging.String("action", string(uevent.Action)),
				logging.String("kobj", uevent.KObj),
			)
			m.refresh()
		case err := <-errs:
			m.logger.Warn("netlink monitor error",
				logging.Error(err),
				logging.String(logging.FieldEventType, "netlink_monitor_error"),
				logging.String(logging.FieldErrorHint, "check kernel netlink subsystem"),
				logging.String(logging.FieldImpact, "network changes may be missed until the next poll"),
			)
		}
	}
}

func netMatcher() netlink.Matcher {
	action := "add|remove|change|move|online|offline"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "net",
		},
	})
	return rules
}
