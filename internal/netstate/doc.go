// Package netstate reports whether the machine can reach the network.
//
// The Monitor classifies local interfaces (wired, wifi, mobile, offline),
// honours a configured override, and optionally re-probes when udev reports
// a change in the net subsystem.
package netstate
