// Package config loads, normalizes, and validates pkcon configuration.
//
// It supplies defaults for the bus endpoint the control client talks to, the
// backend helper directory the supervisor spawns from, the network probe, and
// logging. TOML files are read from ~/.config/packagekit/pkcon.toml (or a path
// passed on the command line) and a few environment variables override file
// values.
//
// Always obtain settings through this package so downstream code receives
// expanded paths and canonical enum spellings.
package config
