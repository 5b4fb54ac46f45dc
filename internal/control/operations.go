package control

import (
	"context"
	"strconv"

	"github.com/godbus/dbus/v5"

	"packagekit/internal/bus"
	"packagekit/internal/enum"
	"packagekit/internal/pkerr"
)

// GetTransactionID asks the daemon to allocate a new transaction id.
func (c *Control) GetTransactionID(ctx context.Context) *Pending[string] {
	const op = "get-tid"
	return begin(c, ctx, op, c.conn.Service(), c.conn.Method("GetTid"), decodeValue[string](op))
}

// GetDaemonState returns the daemon's free-form debugging state dump.
func (c *Control) GetDaemonState(ctx context.Context) *Pending[string] {
	const op = "get-daemon-state"
	return begin(c, ctx, op, c.conn.Service(), c.conn.Method("GetDaemonState"), decodeValue[string](op))
}

// SetProxy configures the proxies the daemon uses for downloads.
func (c *Control) SetProxy(ctx context.Context, httpProxy, ftpProxy string) *Pending[struct{}] {
	const op = "set-proxy"
	return begin(c, ctx, op, c.conn.Service(), c.conn.Method("SetProxy"),
		func(_ *Control, reply *dbus.Call) (struct{}, error) {
			if reply.Err != nil {
				return struct{}{}, pkerr.Normalize(op, reply.Err)
			}
			return struct{}{}, nil
		},
		httpProxy, ftpProxy)
}

// GetTransactionList returns the ids of transactions currently known to the
// daemon.
func (c *Control) GetTransactionList(ctx context.Context) *Pending[[]string] {
	const op = "get-transaction-list"
	return begin(c, ctx, op, c.conn.Service(), c.conn.Method("GetTransactionList"), decodeValue[[]string](op))
}

// GetTimeSinceAction returns the seconds since role last ran. A daemon reply
// of zero means it has no record and is reported as a failure.
func (c *Control) GetTimeSinceAction(ctx context.Context, role enum.Role) *Pending[uint32] {
	const op = "get-time-since-action"
	return begin(c, ctx, op, c.conn.Service(), c.conn.Method("GetTimeSinceAction"),
		func(_ *Control, reply *dbus.Call) (uint32, error) {
			var seconds uint32
			if err := storeReply(op, reply, &seconds); err != nil {
				return 0, err
			}
			if seconds == 0 {
				return 0, pkerr.Wrap(pkerr.ErrOperationFailed, op, "no record of role "+role.String(), nil)
			}
			return seconds, nil
		},
		role.String())
}

// GetNetworkState returns the daemon's view of connectivity.
func (c *Control) GetNetworkState(ctx context.Context) *Pending[enum.Network] {
	const op = "get-network-state"
	return begin(c, ctx, op, c.conn.Service(), c.conn.Method("GetNetworkState"),
		func(_ *Control, reply *dbus.Call) (enum.Network, error) {
			var text string
			if err := storeReply(op, reply, &text); err != nil {
				return enum.NetworkUnknown, err
			}
			state := enum.Networks.FromString(text)
			if state == enum.NetworkUnknown {
				return enum.NetworkUnknown, pkerr.Wrap(pkerr.ErrInvalidWireValue, op, "unrecognised network state "+strconv.Quote(text), nil)
			}
			return state, nil
		})
}

// CanAuthorize asks whether the caller may perform actionID.
func (c *Control) CanAuthorize(ctx context.Context, actionID string) *Pending[enum.Authorize] {
	const op = "can-authorize"
	return begin(c, ctx, op, c.conn.Service(), c.conn.Method("CanAuthorize"),
		func(_ *Control, reply *dbus.Call) (enum.Authorize, error) {
			var text string
			if err := storeReply(op, reply, &text); err != nil {
				return enum.AuthorizeUnknown, err
			}
			result := enum.Authorizations.FromString(text)
			if result == enum.AuthorizeUnknown {
				return enum.AuthorizeUnknown, pkerr.Wrap(pkerr.ErrInvalidWireValue, op, "unrecognised authorization result "+strconv.Quote(text), nil)
			}
			return result, nil
		},
		actionID)
}

// GetProperties fetches every daemon property, merges it into the capability
// cache, and returns the updated snapshot. Transport errors are returned as
// reported by the bus.
func (c *Control) GetProperties(ctx context.Context) *Pending[Properties] {
	const op = "get-properties"
	return begin(c, ctx, op, c.conn.Properties(), bus.PropertiesInterface+".GetAll",
		func(owner *Control, reply *dbus.Call) (Properties, error) {
			if reply.Err != nil {
				return Properties{}, reply.Err
			}
			var values map[string]dbus.Variant
			if err := reply.Store(&values); err != nil {
				return Properties{}, pkerr.Wrap(pkerr.ErrInvalidWireValue, op, "unexpected reply", err)
			}
			owner.mergeProperties(values)
			return owner.Properties(), nil
		},
		c.conn.Interface())
}

// GetPropertiesSync is GetProperties for callers without their own event
// loop. Cancelling ctx asks the transport to abandon the call; the method
// still returns only once the call has completed.
func (c *Control) GetPropertiesSync(ctx context.Context) (Properties, error) {
	pending := c.GetProperties(ctx)
	<-pending.Done()
	return pending.Result()
}
