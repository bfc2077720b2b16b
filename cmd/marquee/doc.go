// Package main hosts the marquee CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the daemon in the foreground, scaffolds
// and validates configuration, reports the local video inventory, and
// translates moderation and playback commands into HTTP calls against a
// running daemon. It centralizes configuration resolution, API address
// discovery, and admin token handling so subcommands can focus on output.
//
// Keep this package lean: add behavior to the internal packages first, then
// surface it through dedicated commands or flags here.
package main
