// Package preflight provides readiness checks for the filesystem paths and
// services marquee depends on.
//
// These checks run in two contexts:
//   - The daemon runtime calls RunAll at startup and logs every failure so
//     operators see missing directories before the first client polls.
//   - The CLI "marquee status" command runs the same checks plus CheckDaemon
//     to display overall health.
package preflight
