package config

import "storyforge/internal/artifact"

const (
	defaultDataDir             = "~/.local/share/storyforge"
	defaultIntakeDir           = "~/.local/share/storyforge/intake"
	defaultMediaDir            = "~/.local/share/storyforge/media"
	defaultLogDir              = "~/.local/share/storyforge/logs"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultTextModel           = "gemini-2.5-flash"
	defaultImageModel          = "gemini-2.5-flash-image-preview"
	defaultSpeechModel         = "gemini-2.5-flash-preview-tts"
	defaultVoice               = "Kore"
	defaultTextTimeoutSeconds  = 120
	defaultSpeechTimeout       = 300
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
	defaultAudioCodec          = "libmp3lame"
	defaultAudioBitrate        = "128k"
	defaultAudioSampleRate     = 44100
	defaultAudioChannels       = 2
	defaultIntakeSettleSeconds = 2
	defaultSceneWorkers        = artifact.SceneCount
	defaultNotifyTimeout       = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			IntakeDir: defaultIntakeDir,
			MediaDir:  defaultMediaDir,
			LogDir:    defaultLogDir,
		},
		Gemini: Gemini{
			TextModel:          defaultTextModel,
			ImageModel:         defaultImageModel,
			SpeechModel:        defaultSpeechModel,
			Voice:              defaultVoice,
			SpeechEnabled:      true,
			ImagesEnabled:      true,
			TextTimeoutSeconds: defaultTextTimeoutSeconds,
			SpeechTimeout:      defaultSpeechTimeout,
		},
		Audio: Audio{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			Codec:         defaultAudioCodec,
			Bitrate:       defaultAudioBitrate,
			SampleRate:    defaultAudioSampleRate,
			Channels:      defaultAudioChannels,
			SizeFloor:     artifact.AudioSizeFloor,
		},
		Workflow: Workflow{
			IntakeSettleSeconds: defaultIntakeSettleSeconds,
			SceneWorkers:        defaultSceneWorkers,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Imported:       true,
			Playable:       true,
			Errors:         true,
			Sweep:          true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
