// Package api defines the wire-format types shared by the daemon's HTTP
// handlers and the CLI client, plus the moderation service that keeps the
// submission registry and the injected-slide list consistent.
//
// # Key Types
//
// Submission: transport representation of a guest submission with nullable
// guestName and reviewedAt.
//
// ModerationResult: outcome of an approve/reject/pending/delete action with
// the number of slides created or removed.
//
// VideoPick/PlayResult: next-video and played-report payloads.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for browser consumers. Timestamps use RFC3339
// with milliseconds. Status values are the lowercase moderation names.
//
// ModerationService serializes every transition so the database status and
// the injected list never disagree: approving re-reads the stamped
// submission before deriving slides, and any move away from approved removes
// the derived pair.
package api
