package assembly

import (
	"strconv"
	"strings"
)

// sampleFormat describes raw PCM parameters parsed from a MIME type such
// as "audio/L16;rate=24000;channels=1".
type sampleFormat struct {
	Channels   int
	SampleRate int
	BitDepth   int
}

// defaults for speech-model output when the MIME parameters are absent.
const (
	defaultChannels   = 1
	defaultSampleRate = 24000
	defaultBitDepth   = 16
)

// ByteRate returns bytes of PCM data per second of audio.
func (f sampleFormat) ByteRate() int {
	return f.SampleRate * f.Channels * f.BitDepth / 8
}

// BlockAlign returns bytes per sample frame across all channels.
func (f sampleFormat) BlockAlign() int {
	return f.Channels * f.BitDepth / 8
}

// isRawPCM reports whether the MIME type names headerless linear PCM.
func isRawPCM(mimeType string) bool {
	base := strings.ToLower(strings.TrimSpace(baseMIME(mimeType)))
	return strings.HasPrefix(base, "audio/l16") || strings.HasPrefix(base, "audio/l8") || strings.HasPrefix(base, "audio/l24")
}

func baseMIME(mimeType string) string {
	if idx := strings.IndexByte(mimeType, ';'); idx >= 0 {
		return mimeType[:idx]
	}
	return mimeType
}

// parseSampleFormat reads channel count, sample rate, and bit depth out of
// the MIME parameter string, falling back to mono 24 kHz 16-bit.
func parseSampleFormat(mimeType string) sampleFormat {
	format := sampleFormat{
		Channels:   defaultChannels,
		SampleRate: defaultSampleRate,
		BitDepth:   defaultBitDepth,
	}

	base := strings.ToLower(strings.TrimSpace(baseMIME(mimeType)))
	switch {
	case strings.HasPrefix(base, "audio/l8"):
		format.BitDepth = 8
	case strings.HasPrefix(base, "audio/l24"):
		format.BitDepth = 24
	}

	rest := mimeType
	if idx := strings.IndexByte(rest, ';'); idx >= 0 {
		rest = rest[idx+1:]
	} else {
		rest = ""
	}
	for _, param := range strings.Split(rest, ";") {
		key, value, found := strings.Cut(strings.TrimSpace(param), "=")
		if !found {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n <= 0 {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "rate":
			format.SampleRate = n
		case "channels":
			format.Channels = n
		case "bits":
			format.BitDepth = n
		}
	}
	return format
}
