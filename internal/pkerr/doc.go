// Package pkerr defines the error kinds shared by the control client and the
// helper supervisor.
//
// Callers classify failures with errors.Is against the exported sentinels.
// Wrap attaches operation context without hiding the kind, and Normalize maps
// raw bus errors onto the two kinds the control surface reports.
package pkerr
