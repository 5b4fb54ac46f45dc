// Package control is the client-side handle to the package daemon.
//
// A Control issues asynchronous daemon queries (transaction ids, daemon state,
// network state, authorization, properties, ...) over a shared bus
// Connection, tracks every in-flight call so teardown can cancel them, keeps a
// cache of the daemon's advertised capabilities, and re-emits daemon signals
// as local events for as long as it lives.
//
// Each operation returns a *Pending immediately; the Pending resolves exactly
// once with a value or a classified error (see package pkerr). Acquire hands
// out a process-wide refcounted Control.
package control
