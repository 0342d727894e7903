// Package kernel owns host runtime concerns.
//
// Ownership boundary:
// - module attachment
//
// - service election timing
//
// - lifecycle phase delivery
//
// Lifecycle order:
// - attach -> bootstrap -> initialize -> postinitialize -> serve
//
// - serve may run with an empty module list.
//
// - a winner's phase failure is logged and does not stop the host.
//
// The kernel does not own service semantics; providers do.
package kernel
