// Package bus owns the process-wide connection to the package daemon.
//
// A Connection holds one bus connection and three proxies: the daemon service
// object, the standard properties interface on that object, and the bus
// daemon itself for owner tracking. It subscribes once to the daemon's
// broadcast signals and to NameOwnerChanged for the daemon's name, translates
// them into Event values, and delivers them in order to every observer.
//
// Acquire shares a single refcounted Connection across the process; Release
// closes it when the last holder lets go.
package bus
