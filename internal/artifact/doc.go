// Package artifact defines the persisted story artifact model shared by the
// store, validator, and pipeline: scenes, extracted entities, scene images,
// and the assembled narration track.
package artifact
