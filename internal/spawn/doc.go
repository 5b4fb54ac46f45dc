// Package spawn supervises backend helper processes.
//
// A helper is an executable named after the operation it performs
// (install.py, search-name.py, ...). It receives the operation arguments on
// its command line and reports progress on stdout, one tab-separated record
// per line. The Supervisor runs at most one helper per transaction, refuses
// network-bound work while offline, parses the stdout protocol into Events,
// and turns cancellation into SIGTERM for the helper's process group.
package spawn
