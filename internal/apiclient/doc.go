// Package apiclient is the CLI's HTTP client for a running marquee daemon.
//
// It resolves the configured api_bind into a base URL, attaches admin session
// tokens, and decodes the daemon's JSON payloads into the shared api DTOs.
// Non-2xx replies surface as *Error values carrying the status code and the
// daemon's error message; connection failures satisfy IsUnavailable so callers
// can print a "daemon not running" hint instead of a raw dial error.
package apiclient
