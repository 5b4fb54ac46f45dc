package bus

import (
	"github.com/godbus/dbus/v5"

	"packagekit/internal/config"
)

type dbusBackend struct {
	conn *dbus.Conn
}

func dialBus(address string) (Backend, error) {
	var (
		conn *dbus.Conn
		err  error
	)
	switch address {
	case "", config.BusSystem:
		conn, err = dbus.ConnectSystemBus()
	case config.BusSession:
		conn, err = dbus.ConnectSessionBus()
	default:
		conn, err = dbus.Connect(address)
	}
	if err != nil {
		return nil, err
	}
	return dbusBackend{conn: conn}, nil
}

func (b dbusBackend) Object(dest string, path dbus.ObjectPath) Proxy {
	return b.conn.Object(dest, path)
}

func (b dbusBackend) AddMatchSignal(options ...dbus.MatchOption) error {
	return b.conn.AddMatchSignal(options...)
}

func (b dbusBackend) Signal(ch chan<- *dbus.Signal) { b.conn.Signal(ch) }

func (b dbusBackend) RemoveSignal(ch chan<- *dbus.Signal) { b.conn.RemoveSignal(ch) }

func (b dbusBackend) Close() error { return b.conn.Close() }
