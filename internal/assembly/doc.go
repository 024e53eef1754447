// Package assembly turns per-scene speech fragments of heterogeneous
// encodings into one normalized narration track. It deduplicates streamed
// chunks, synthesizes WAV headers for headerless raw-sample fragments,
// estimates durations, and drives the external encoder for the final
// concatenation.
package assembly
