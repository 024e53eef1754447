// Package services provides shared plumbing for pipeline components:
// sentinel error classification and context annotation helpers used by
// structured logging.
package services
