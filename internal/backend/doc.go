// Package backend maps package-management operations onto backend helper
// invocations.
//
// Each Operation names the helper executable, how its arguments are laid
// out, and whether it needs the network. Run validates the parameters,
// renders the argument vector, and hands the request to the spawn
// supervisor.
package backend
