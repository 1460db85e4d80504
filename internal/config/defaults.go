package config

const (
	defaultConfigLocation     = "~/.config/voiceregen/config.toml"
	projectConfigName         = "voiceregen.toml"
	defaultSourceDir          = "data/SourceData"
	defaultStagingDir         = "data/OrigData"
	defaultBackupDir          = "data/OriginalOggs"
	defaultOutputDir          = "data/CustomData"
	defaultFinalDir           = "data/FinalOggData"
	defaultLogDir             = "data/logs"
	defaultLexiconPath        = "lexicon.json"
	defaultNameFragment       = "Arc"
	defaultReplacementName    = "v'zicksa"
	defaultNFEStep            = 32
	defaultReferenceThreshold = 250
	defaultReferenceMin       = 250
	defaultTTSCommand         = "uvx"
	defaultTTSPackage         = "f5-tts"
	defaultTTSModel           = "F5TTS_v1_Base"
	defaultFFmpegBinary       = "ffmpeg"
	defaultCodec              = "libopus"
	defaultBitrate            = "64k"
	defaultMaxPathLength      = 260
	defaultProgressEvery      = 100
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogRetentionDays   = 30
	defaultStripCommaPause    = true
	defaultPlaceholderName    = "_NAME_"
	defaultPlaceholderFirst   = "_FIRSTNAME_"
	envReplacementName        = "VOICEREGEN_NAME"
	envSourceDir              = "VOICEREGEN_SOURCE_DIR"
	envHFToken                = "HF_TOKEN"
	envHuggingFaceHubToken    = "HUGGING_FACE_HUB_TOKEN"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceDir:  defaultSourceDir,
			StagingDir: defaultStagingDir,
			BackupDir:  defaultBackupDir,
			OutputDir:  defaultOutputDir,
			FinalDir:   defaultFinalDir,
			LogDir:     defaultLogDir,
			Lexicon:    defaultLexiconPath,
		},
		Filter: Filter{
			NameFragment: defaultNameFragment,
			Tokens:       []string{defaultPlaceholderName, defaultPlaceholderFirst},
		},
		Regeneration: Regeneration{
			ReplacementName:      defaultReplacementName,
			StripCommaPause:      defaultStripCommaPause,
			NFEStep:              defaultNFEStep,
			ReferenceThresholdKB: defaultReferenceThreshold,
			ReferenceMinKB:       defaultReferenceMin,
		},
		TTS: TTS{
			Command: defaultTTSCommand,
			Package: defaultTTSPackage,
			Model:   defaultTTSModel,
		},
		Conversion: Conversion{
			FFmpegBinary:  defaultFFmpegBinary,
			Codec:         defaultCodec,
			Bitrate:       defaultBitrate,
			MaxPathLength: defaultMaxPathLength,
			ProgressEvery: defaultProgressEvery,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
