package artifact

// AudioStatus classifies the narration stage of an artifact.
type AudioStatus string

const (
	// AudioMissing means no audio record exists at all.
	AudioMissing AudioStatus = "missing"
	// AudioError means the last assembly attempt recorded an error.
	AudioError AudioStatus = "error"
	// AudioEmpty means a record exists but points at no file.
	AudioEmpty AudioStatus = "empty"
	// AudioFileAbsent means the record references a file that is gone.
	AudioFileAbsent AudioStatus = "file_absent"
	// AudioIncomplete means the file exists but is below the size floor.
	AudioIncomplete AudioStatus = "incomplete"
	// AudioPlaceholder means the track was assembled from synthetic
	// silent fragments rather than real speech synthesis.
	AudioPlaceholder AudioStatus = "placeholder"
	// AudioComplete means the track is present, error-free, and above
	// the size floor.
	AudioComplete AudioStatus = "complete"
)

var audioStatusSet = map[AudioStatus]struct{}{
	AudioMissing:     {},
	AudioError:       {},
	AudioEmpty:       {},
	AudioFileAbsent:  {},
	AudioIncomplete:  {},
	AudioPlaceholder: {},
	AudioComplete:    {},
}

// Known reports whether the status is one of the defined values.
func (s AudioStatus) Known() bool {
	_, ok := audioStatusSet[s]
	return ok
}

// NeedsRegeneration reports whether the audio stage should run again.
// Placeholder audio is regenerated: it keeps playback working in a
// degraded mode but never counts as playable.
func (s AudioStatus) NeedsRegeneration() bool {
	return s != AudioComplete
}
