package assembly

import (
	"context"

	"storyforge/internal/config"
	"storyforge/internal/media/ffmpeg"
	"storyforge/internal/media/ffprobe"
)

// FFmpegEncoder drives the ffmpeg binary with the configured codec
// settings.
type FFmpegEncoder struct {
	binary string
	opts   ffmpeg.Options
}

// NewFFmpegEncoder builds an encoder from the audio configuration.
func NewFFmpegEncoder(cfg config.Audio) *FFmpegEncoder {
	return &FFmpegEncoder{
		binary: cfg.FFmpegBinary,
		opts: ffmpeg.Options{
			Codec:      cfg.Codec,
			Bitrate:    cfg.Bitrate,
			SampleRate: cfg.SampleRate,
			Channels:   cfg.Channels,
		},
	}
}

func (e *FFmpegEncoder) Encode(ctx context.Context, inputPath, outputPath string) error {
	return ffmpeg.Encode(ctx, e.binary, inputPath, outputPath, e.opts)
}

func (e *FFmpegEncoder) Concat(ctx context.Context, inputPaths []string, outputPath string) error {
	return ffmpeg.Concat(ctx, e.binary, inputPaths, outputPath, e.opts)
}

func (e *FFmpegEncoder) Silence(ctx context.Context, seconds float64, outputPath string) error {
	return ffmpeg.Silence(ctx, e.binary, seconds, outputPath, e.opts)
}

// FFprobeProber measures finished tracks with the ffprobe binary.
type FFprobeProber struct {
	binary string
}

// NewFFprobeProber builds a prober from the audio configuration.
func NewFFprobeProber(cfg config.Audio) *FFprobeProber {
	return &FFprobeProber{binary: cfg.FFprobeBinary}
}

func (p *FFprobeProber) Duration(ctx context.Context, path string) (float64, error) {
	result, err := ffprobe.Inspect(ctx, p.binary, path)
	if err != nil {
		return 0, err
	}
	return result.DurationSeconds(), nil
}
