package netstate

import (
	"context"
	"errors"
	"sync"
	"testing"

	"packagekit/internal/config"
	"packagekit/internal/enum"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		ifaces []Interface
		want   enum.Network
	}{
		{"no interfaces", nil, enum.NetworkOffline},
		{"loopback only", []Interface{{Name: "lo", Up: true, Loopback: true, Addrs: 2}}, enum.NetworkOffline},
		{"down ethernet", []Interface{{Name: "eth0", Addrs: 1}}, enum.NetworkOffline},
		{"up without address", []Interface{{Name: "eth0", Up: true}}, enum.NetworkOffline},
		{"wired", []Interface{{Name: "enp3s0", Up: true, Addrs: 1}}, enum.NetworkWired},
		{"wifi", []Interface{{Name: "wlan0", Up: true, Addrs: 1}}, enum.NetworkWifi},
		{"mobile", []Interface{{Name: "wwan0", Up: true, Addrs: 1}}, enum.NetworkMobile},
		{"wired beats wifi", []Interface{
			{Name: "wlp2s0", Up: true, Addrs: 1},
			{Name: "eth0", Up: true, Addrs: 1},
		}, enum.NetworkWired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.ifaces); got != tt.want {
				t.Fatalf("Classify = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestForcedState(t *testing.T) {
	cfg := config.Default()
	cfg.Network.Force = "offline"
	probed := false
	m := New(&cfg, WithProber(func() ([]Interface, error) {
		probed = true
		return []Interface{{Name: "eth0", Up: true, Addrs: 1}}, nil
	}))
	if m.Online(context.Background()) {
		t.Fatal("forced offline monitor reports online")
	}
	if probed {
		t.Fatal("forced monitor probed interfaces")
	}
	if !Static(enum.NetworkOnline).Online(context.Background()) {
		t.Fatal("static online monitor reports offline")
	}
}

func TestProbeFailureIsNotOnline(t *testing.T) {
	m := New(nil, WithProber(func() ([]Interface, error) {
		return nil, errors.New("permission denied")
	}))
	if got := m.State(); got != enum.NetworkUnknown {
		t.Fatalf("State = %s", got)
	}
	if m.Online(context.Background()) {
		t.Fatal("unknown state treated as online")
	}
}

func TestSubscribeNotifiesChanges(t *testing.T) {
	var mu sync.Mutex
	ifaces := []Interface{{Name: "eth0", Up: true, Addrs: 1}}
	m := New(nil, WithProber(func() ([]Interface, error) {
		mu.Lock()
		defer mu.Unlock()
		return ifaces, nil
	}))

	var seen []enum.Network
	unsubscribe := m.Subscribe(func(n enum.Network) { seen = append(seen, n) })
	if got := m.State(); got != enum.NetworkWired {
		t.Fatalf("State = %s", got)
	}

	mu.Lock()
	ifaces = []Interface{{Name: "wlan0", Up: true, Addrs: 1}}
	mu.Unlock()
	m.State()
	m.State()

	unsubscribe()
	mu.Lock()
	ifaces = nil
	mu.Unlock()
	m.State()

	if len(seen) != 1 || seen[0] != enum.NetworkWifi {
		t.Fatalf("notifications = %v", seen)
	}
}

func TestStartStopIdempotency(t *testing.T) {
	cfg := config.Default()
	cfg.Network.Monitor = false
	m := New(&cfg)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if m.Running() {
		t.Fatal("monitor started with watching disabled")
	}
	m.Stop()
	m.Stop()

	var nilMonitor *Monitor
	if nilMonitor.Running() {
		t.Fatal("nil monitor reports running")
	}
	nilMonitor.Stop()
	if err := nilMonitor.Start(context.Background()); err != nil {
		t.Fatalf("nil Start: %v", err)
	}
}
