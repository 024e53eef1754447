// Package store persists story artifacts in SQLite. Artifact metadata and
// generated stage payloads live in the database; assembled audio files stay on
// disk in the media directory and are referenced by path.
package store
