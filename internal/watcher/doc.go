// Package watcher feeds the pipeline from the intake directory. New story
// submissions arrive as JSON files; the watcher waits for the writer to
// settle, imports the submission into the artifact store, renames the file
// so it is never imported twice, and hands the new artifact ID to the
// orchestrator.
package watcher
