package netstate

import (
	"fmt"
	"net"
	"strings"

	"packagekit/internal/enum"
)

// Interface is the subset of link information the classifier needs.
type Interface struct {
	Name     string
	Up       bool
	Loopback bool
	Addrs    int
}

// Prober lists local interfaces.
type Prober func() ([]Interface, error)

// SystemInterfaces reads interfaces from the kernel.
func SystemInterfaces() ([]Interface, error) {
	links, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}
	out := make([]Interface, 0, len(links))
	for _, link := range links {
		iface := Interface{
			Name:     link.Name,
			Up:       link.Flags&net.FlagUp != 0,
			Loopback: link.Flags&net.FlagLoopback != 0,
		}
		if iface.Up && !iface.Loopback {
			addrs, err := link.Addrs()
			if err == nil {
				iface.Addrs = len(addrs)
			}
		}
		out = append(out, iface)
	}
	return out, nil
}

// Classify picks the best connection among ifaces. Wired beats wifi, which
// beats mobile broadband.
func Classify(ifaces []Interface) enum.Network {
	best := enum.NetworkOffline
	for _, iface := range ifaces {
		if !iface.Up || iface.Loopback || iface.Addrs == 0 {
			continue
		}
		kind := kindOf(iface.Name)
		if rank(kind) > rank(best) {
			best = kind
		}
	}
	return best
}

func kindOf(name string) enum.Network {
	switch {
	case strings.HasPrefix(name, "wl"), strings.HasPrefix(name, "ath"):
		return enum.NetworkWifi
	case strings.HasPrefix(name, "ww"), strings.HasPrefix(name, "ppp"):
		return enum.NetworkMobile
	default:
		return enum.NetworkWired
	}
}

func rank(n enum.Network) int {
	switch n {
	case enum.NetworkWired:
		return 3
	case enum.NetworkWifi:
		return 2
	case enum.NetworkMobile:
		return 1
	default:
		return 0
	}
}
