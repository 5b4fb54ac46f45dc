// Command pkcon queries the PackageKit daemon over the system bus and runs
// backend helpers locally.
package main
