// Package storage writes the per-account JSON artifacts.
//
// Each processed account produces two files in the output directory, both
// stamped with the same run timestamp:
//
//	tweets_<username>_<timestamp>.json
//	user_metadata_<username>_<timestamp>.json
//
// Writes are atomic: content goes to a temporary file which is then renamed
// into place, so a crash never leaves a half-written artifact. Files are
// never overwritten within a run because the timestamp is part of the name.
package storage
