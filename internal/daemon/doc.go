// Package daemon ties the intake watcher, pipeline orchestrator, and
// reconciliation sweep into a single-instance background service.
package daemon
