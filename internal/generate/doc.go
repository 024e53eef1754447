// Package generate wraps the Gemini generative collaborators behind narrow
// interfaces: scene writing, entity extraction, image generation, and speech
// synthesis. Each call is bounded by a configured timeout and returns an
// explicit error; degradation policy (placeholders, recorded error fields)
// lives in the pipeline, not here.
package generate
