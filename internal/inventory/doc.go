// Package inventory scans the on-disk video library into per-category lists.
//
// The library root holds one subdirectory per category; each playable clip is
// identified by its path relative to the root's parent (for example
// "videos/fireworks/clip01.mp4"), which is the same path browsers use under
// /videos. Incomplete downloads (".part"), hidden files ("_" prefix) and
// undersized files are skipped rather than reported as errors.
//
// The Scanner keeps the most recent complete Inventory behind an atomic
// pointer so readers never observe a partial rescan.
package inventory
