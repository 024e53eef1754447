package config

import (
	"fmt"
	"os"
	"strings"

	"storyforge/internal/artifact"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeGemini()
	c.normalizeAudio()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.IntakeDir) == "" {
		c.Paths.IntakeDir = defaultIntakeDir
	}
	if c.Paths.IntakeDir, err = expandPath(c.Paths.IntakeDir); err != nil {
		return fmt.Errorf("paths.intake_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.MediaDir) == "" {
		c.Paths.MediaDir = defaultMediaDir
	}
	if c.Paths.MediaDir, err = expandPath(c.Paths.MediaDir); err != nil {
		return fmt.Errorf("paths.media_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeGemini() {
	if c.Gemini.APIKey == "" {
		if value, ok := os.LookupEnv("GEMINI_API_KEY"); ok {
			c.Gemini.APIKey = value
		}
	}
	c.Gemini.APIKey = strings.TrimSpace(c.Gemini.APIKey)
	if strings.TrimSpace(c.Gemini.TextModel) == "" {
		c.Gemini.TextModel = defaultTextModel
	}
	if strings.TrimSpace(c.Gemini.ImageModel) == "" {
		c.Gemini.ImageModel = defaultImageModel
	}
	if strings.TrimSpace(c.Gemini.SpeechModel) == "" {
		c.Gemini.SpeechModel = defaultSpeechModel
	}
	if strings.TrimSpace(c.Gemini.Voice) == "" {
		c.Gemini.Voice = defaultVoice
	}
	if c.Gemini.TextTimeoutSeconds <= 0 {
		c.Gemini.TextTimeoutSeconds = defaultTextTimeoutSeconds
	}
	if c.Gemini.SpeechTimeout <= 0 {
		c.Gemini.SpeechTimeout = defaultSpeechTimeout
	}
}

func (c *Config) normalizeAudio() {
	if strings.TrimSpace(c.Audio.FFmpegBinary) == "" {
		c.Audio.FFmpegBinary = defaultFFmpegBinary
	}
	if strings.TrimSpace(c.Audio.FFprobeBinary) == "" {
		c.Audio.FFprobeBinary = defaultFFprobeBinary
	}
	if strings.TrimSpace(c.Audio.Codec) == "" {
		c.Audio.Codec = defaultAudioCodec
	}
	if strings.TrimSpace(c.Audio.Bitrate) == "" {
		c.Audio.Bitrate = defaultAudioBitrate
	}
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = defaultAudioSampleRate
	}
	if c.Audio.Channels <= 0 {
		c.Audio.Channels = defaultAudioChannels
	}
	if c.Audio.SizeFloor <= 0 {
		c.Audio.SizeFloor = artifact.AudioSizeFloor
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.IntakeSettleSeconds < 0 {
		c.Workflow.IntakeSettleSeconds = defaultIntakeSettleSeconds
	}
	if c.Workflow.SceneWorkers <= 0 {
		c.Workflow.SceneWorkers = defaultSceneWorkers
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
