// Package store persists guest submissions, admin sessions, and the slideshow
// playback record in SQLite.
//
// Submissions move freely between pending, approved, and rejected; every
// transition stamps reviewed_at. Review stamps are strictly increasing and at
// least two milliseconds apart so slides derived from different submissions
// never share or interleave timestamps.
//
// Schema changes bump the version in schema.go; operators delete the database
// to adopt a new schema.
package store
