// Package daemon coordinates the long-running marquee process.
//
// It wires configuration, the SQLite store, the video inventory and play-count
// ledger, the slideshow state machine, and the slide injector into a single
// lifecycle with flock-based locking to prevent multiple instances. The daemon
// serves the HTTP API polled by the display, admin and guest clients, guards
// admin routes with session tokens, and exports Prometheus metrics.
//
// Keep orchestration and HTTP plumbing here: selection, state and merge rules
// live in their own packages while the daemon focuses on startup, shutdown,
// and request routing.
package daemon
