package assembly

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"storyforge/internal/artifact"
	"storyforge/internal/config"
	"storyforge/internal/logging"
)

// Encoder re-encodes and concatenates fragment files into the output
// track. Implemented by the ffmpeg wrapper in production and by fakes in
// tests.
type Encoder interface {
	Encode(ctx context.Context, inputPath, outputPath string) error
	Concat(ctx context.Context, inputPaths []string, outputPath string) error
	Silence(ctx context.Context, seconds float64, outputPath string) error
}

// Prober measures the finished track. Implemented by the ffprobe wrapper.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Assembler merges per-scene fragments into one narration file on disk.
type Assembler struct {
	encoder   Encoder
	prober    Prober
	mediaDir  string
	sizeFloor int64
	logger    *slog.Logger
}

// New constructs an assembler writing into the configured media directory.
func New(encoder Encoder, prober Prober, cfg *config.Config, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = logging.NewNop()
	}
	floor := cfg.Audio.SizeFloor
	if floor <= 0 {
		floor = artifact.AudioSizeFloor
	}
	return &Assembler{
		encoder:   encoder,
		prober:    prober,
		mediaDir:  cfg.Paths.MediaDir,
		sizeFloor: floor,
		logger:    logger,
	}
}

// OutputPath returns where an artifact's narration track lives.
func (a *Assembler) OutputPath(artifactID string) string {
	return filepath.Join(a.mediaDir, artifactID+".mp3")
}

// Assemble writes the fragments to intermediate files, merges them through
// the encoder, and verifies the result. Exactly one fragment takes the
// direct re-encode path; two or more go through concatenation. Fragments
// are ordered by scene index regardless of arrival order.
func (a *Assembler) Assemble(ctx context.Context, artifactID string, fragments []artifact.Fragment) (*artifact.Audio, error) {
	if len(fragments) == 0 {
		return nil, fmt.Errorf("no fragments to assemble")
	}
	ordered := append([]artifact.Fragment(nil), fragments...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].SceneIndex < ordered[j].SceneIndex })

	workDir, err := os.MkdirTemp(a.mediaDir, artifactID+"-fragments-")
	if err != nil {
		return nil, fmt.Errorf("create fragment dir: %w", err)
	}
	defer a.cleanup(workDir)

	paths := make([]string, 0, len(ordered))
	placeholder := false
	estimated := 0.0
	for _, frag := range ordered {
		path := filepath.Join(workDir, fmt.Sprintf("scene-%02d%s", frag.SceneIndex, fragmentExt(frag.MIMEType)))
		if frag.Placeholder {
			if err := a.encoder.Silence(ctx, frag.DurationSeconds, path); err != nil {
				return nil, fmt.Errorf("render silence for fragment %d: %w", frag.SceneIndex, err)
			}
		} else if err := os.WriteFile(path, frag.Data, 0o644); err != nil {
			return nil, fmt.Errorf("write fragment %d: %w", frag.SceneIndex, err)
		}
		paths = append(paths, path)
		placeholder = placeholder || frag.Placeholder
		estimated += frag.DurationSeconds
	}

	outputPath := a.OutputPath(artifactID)
	if len(paths) == 1 {
		err = a.encoder.Encode(ctx, paths[0], outputPath)
	} else {
		err = a.encoder.Concat(ctx, paths, outputPath)
	}
	if err != nil {
		return nil, fmt.Errorf("encode narration: %w", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return nil, fmt.Errorf("assembled output missing: %w", err)
	}
	if info.Size() < a.sizeFloor {
		return nil, fmt.Errorf("assembly produced undersized output: %d bytes, floor is %d", info.Size(), a.sizeFloor)
	}

	duration := estimated
	if a.prober != nil {
		if measured, probeErr := a.prober.Duration(ctx, outputPath); probeErr == nil && measured > 0 {
			duration = measured
		} else if probeErr != nil {
			a.logger.Warn("probe failed, using estimated duration",
				logging.String("path", outputPath),
				logging.Error(probeErr))
		}
	}

	a.logger.Info("narration assembled",
		logging.String("path", outputPath),
		logging.Int("segments", len(ordered)),
		logging.Int64("size_bytes", info.Size()),
		logging.Float64("duration_seconds", duration),
		logging.Bool("placeholder", placeholder))

	return &artifact.Audio{
		Path:            outputPath,
		MIMEType:        "audio/mpeg",
		DurationSeconds: duration,
		SegmentCount:    len(ordered),
		SizeBytes:       info.Size(),
		Placeholder:     placeholder,
		GeneratedAt:     time.Now().UTC(),
	}, nil
}

func (a *Assembler) cleanup(workDir string) {
	if err := os.RemoveAll(workDir); err != nil {
		a.logger.Warn("fragment cleanup failed",
			logging.String("dir", workDir),
			logging.Error(err))
	}
}

func fragmentExt(mimeType string) string {
	switch strings.ToLower(baseMIME(mimeType)) {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/ogg":
		return ".ogg"
	default:
		return ".bin"
	}
}
