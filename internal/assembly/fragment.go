package assembly

import (
	"crypto/md5"
	"errors"

	"storyforge/internal/artifact"
)

const (
	// minChunkBytes discards stream-framing artifacts that carry no real
	// audio.
	minChunkBytes = 128
	// minFragmentSeconds floors duration estimates so downstream timing
	// never sees zero or negative values.
	minFragmentSeconds = 5.0
)

// Chunk is one streamed slice of a fragment's audio, as received from the
// speech collaborator.
type Chunk struct {
	Data     []byte
	MIMEType string
}

// BuildFragment merges a fragment's streamed chunks into one normalized
// buffer. Chunks whose MD5 matches an already-seen chunk are discarded;
// streaming collaborators re-emit sent chunks on reconnects, which would
// otherwise play as audible repetition. Undersized chunks are dropped too.
// Raw PCM input gains a synthesized WAV header.
func BuildFragment(sceneIndex int, chunks []Chunk) (artifact.Fragment, error) {
	var (
		data     []byte
		mimeType string
		seen     = make(map[[md5.Size]byte]struct{}, len(chunks))
	)
	for _, chunk := range chunks {
		if len(chunk.Data) < minChunkBytes {
			continue
		}
		sum := md5.Sum(chunk.Data)
		if _, dup := seen[sum]; dup {
			continue
		}
		seen[sum] = struct{}{}
		data = append(data, chunk.Data...)
		if mimeType == "" {
			mimeType = chunk.MIMEType
		}
	}
	if len(data) == 0 {
		return artifact.Fragment{}, errors.New("fragment has no usable audio chunks")
	}

	format := parseSampleFormat(mimeType)
	duration := estimateDuration(len(data), format)
	if isRawPCM(mimeType) {
		data = append(wavHeader(format, len(data)), data...)
		mimeType = "audio/wav"
	}

	return artifact.Fragment{
		SceneIndex:      sceneIndex,
		Data:            data,
		MIMEType:        mimeType,
		DurationSeconds: duration,
	}, nil
}

// PlaceholderFragment stands in for a scene whose speech synthesis is
// disabled or failed. It carries no audio data; the assembler renders
// silence of the given duration in its place. The track stays assemblable
// but is flagged so it never counts as finished narration.
func PlaceholderFragment(sceneIndex int, seconds float64) artifact.Fragment {
	if seconds < minFragmentSeconds {
		seconds = minFragmentSeconds
	}
	return artifact.Fragment{
		SceneIndex:      sceneIndex,
		MIMEType:        "audio/wav",
		DurationSeconds: seconds,
		Placeholder:     true,
	}
}

// estimateDuration derives seconds from byte length and the assumed byte
// rate, floored to keep timing sane for formats we do not decode.
func estimateDuration(dataLen int, format sampleFormat) float64 {
	byteRate := format.ByteRate()
	if byteRate <= 0 {
		return minFragmentSeconds
	}
	seconds := float64(dataLen) / float64(byteRate)
	if seconds < minFragmentSeconds {
		return minFragmentSeconds
	}
	return seconds
}
