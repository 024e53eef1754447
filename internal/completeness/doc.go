// Package completeness inspects a persisted artifact and reports which
// generation stages are present, valid, missing, or erroring, at scene
// granularity and whole-artifact granularity. Validation never mutates the
// artifact; the only I/O is a stat of the referenced audio file.
package completeness
