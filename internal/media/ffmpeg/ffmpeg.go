// Package ffmpeg shells out to the ffmpeg binary for narration encoding:
// single-fragment re-encodes, multi-fragment concatenation, and silence
// rendering for placeholder fragments.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"storyforge/internal/services"
)

// Options carries the target encoding parameters for an output file.
type Options struct {
	Codec      string
	Bitrate    string
	SampleRate int
	Channels   int
}

func (o Options) encodeArgs() []string {
	args := []string{}
	if o.Codec != "" {
		args = append(args, "-c:a", o.Codec)
	}
	if o.Bitrate != "" {
		args = append(args, "-b:a", o.Bitrate)
	}
	if o.SampleRate > 0 {
		args = append(args, "-ar", fmt.Sprintf("%d", o.SampleRate))
	}
	if o.Channels > 0 {
		args = append(args, "-ac", fmt.Sprintf("%d", o.Channels))
	}
	return args
}

// targetFormat resolves the sample rate and channel layout the output
// should carry, defaulting to the speech synthesis format.
func (o Options) targetFormat() (int, string) {
	rate := o.SampleRate
	if rate <= 0 {
		rate = 24000
	}
	layout := "mono"
	if o.Channels > 1 {
		layout = "stereo"
	}
	return rate, layout
}

// Encode re-encodes a single input file to the target codec settings.
func Encode(ctx context.Context, binary, inputPath, outputPath string, opts Options) error {
	if err := checkPaths(inputPath, outputPath); err != nil {
		return err
	}
	args := []string{"-y", "-hide_banner", "-loglevel", "error", "-i", inputPath}
	args = append(args, opts.encodeArgs()...)
	args = append(args, outputPath)
	return run(ctx, binary, args)
}

// Concat joins the inputs into one continuous track through a single
// concat filter invocation. Each input is resampled to the target rate and
// channel count before joining; negative timestamps are zeroed and
// presentation timestamps regenerated, since per-fragment durations are
// estimates and would otherwise leave discontinuities at scene boundaries.
func Concat(ctx context.Context, binary string, inputPaths []string, outputPath string, opts Options) error {
	if len(inputPaths) < 2 {
		return errors.New("ffmpeg concat: need at least two inputs")
	}
	if err := checkPaths(outputPath); err != nil {
		return err
	}

	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	for _, input := range inputPaths {
		if strings.TrimSpace(input) == "" {
			return errors.New("ffmpeg concat: empty input path")
		}
		args = append(args, "-i", input)
	}
	args = append(args,
		"-filter_complex", concatFilter(len(inputPaths), opts),
		"-map", "[joined]",
		"-avoid_negative_ts", "make_zero",
		"-fflags", "+genpts",
	)
	args = append(args, opts.encodeArgs()...)
	args = append(args, outputPath)
	return run(ctx, binary, args)
}

// concatFilter builds a graph that resamples every input to the target
// rate and channel layout before the join. The concat filter rejects
// inputs whose formats differ, and speech fragments arrive at the
// synthesis rate while rendered silence uses the output rate.
func concatFilter(n int, opts Options) string {
	rate, layout := opts.targetFormat()
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "[%d:a]aresample=%d,aformat=channel_layouts=%s[a%d];", i, rate, layout, i)
	}
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "[a%d]", i)
	}
	fmt.Fprintf(&b, "concat=n=%d:v=0:a=1[joined]", n)
	return b.String()
}

// Silence renders a silent track of the given duration, used as a
// placeholder fragment when speech synthesis is disabled or fails.
func Silence(ctx context.Context, binary string, seconds float64, outputPath string, opts Options) error {
	if seconds <= 0 {
		return errors.New("ffmpeg silence: non-positive duration")
	}
	if err := checkPaths(outputPath); err != nil {
		return err
	}

	rate, layout := opts.targetFormat()
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-f", "lavfi",
		"-i", fmt.Sprintf("anullsrc=r=%d:cl=%s", rate, layout),
		"-t", fmt.Sprintf("%.2f", seconds),
		"-c:a", "pcm_s16le",
		outputPath,
	}
	return run(ctx, binary, args)
}

func run(ctx context.Context, binary string, args []string) error {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: ffmpeg: %w: %s", services.ErrExternalTool, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func checkPaths(paths ...string) error {
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			return errors.New("ffmpeg: empty path")
		}
	}
	return nil
}
