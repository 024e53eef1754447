// Package pipeline sequences the completeness validator and the four stage
// regenerators into one idempotent pass per artifact. Each stage runs only
// when the validator marks it invalid (or the operator forced a rebuild),
// and each stage's output is persisted before the next stage starts, so a
// crash loses at most one stage's work. Passes over the same artifact are
// serialized; distinct artifacts never block each other.
package pipeline
