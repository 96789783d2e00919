package config

const (
	defaultLogDir                  = "~/.local/share/audiodupes/logs"
	defaultCacheFile               = "fingerprints.db"
	defaultRadius1                 = 10
	defaultRadius2                 = 100
	defaultCoarseRejectBitsPerCode = 8
	defaultDurationSkipSeconds     = 60
	defaultMatchThreshold          = 0.55
	defaultStrongMatchThreshold    = 0.75
	defaultWeakMatchThreshold      = 0.35
	defaultFpcalcBinary            = "fpcalc"
	defaultFFmpegBinary            = "ffmpeg"
	defaultFFprobeBinary           = "ffprobe"
	defaultLengthSeconds           = 120
	defaultSilenceThresholdDB      = -50
	defaultSilenceMinSeconds       = 0.5
	defaultExtractTimeoutSeconds   = 300
	defaultColour                  = ColourAuto
	defaultOutputFormat            = FormatText
	defaultProgress                = ProgressMarks
	defaultLogFormat               = "console"
	defaultLogLevel                = "warn"
)

// Colour modes accepted by output.colour.
const (
	ColourAuto = "auto"
	ColourYes  = "yes"
	ColourNo   = "no"
)

// Progress styles accepted by output.progress.
const (
	ProgressMarks = "marks"
	ProgressBar   = "bar"
)

// Report formats accepted by output.format.
const (
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir: defaultCacheDir(),
			LogDir:   defaultLogDir,
		},
		Matching: Matching{
			Radius1:                 defaultRadius1,
			Radius2:                 defaultRadius2,
			CoarseRejectBitsPerCode: defaultCoarseRejectBitsPerCode,
			DurationSkipSeconds:     defaultDurationSkipSeconds,
			MatchThreshold:          defaultMatchThreshold,
			StrongMatchThreshold:    defaultStrongMatchThreshold,
			WeakMatchThreshold:      defaultWeakMatchThreshold,
		},
		Fingerprint: Fingerprint{
			FpcalcBinary:       defaultFpcalcBinary,
			FFmpegBinary:       defaultFFmpegBinary,
			FFprobeBinary:      defaultFFprobeBinary,
			LengthSeconds:      defaultLengthSeconds,
			ProbeMedia:         true,
			SilenceThresholdDB: defaultSilenceThresholdDB,
			SilenceMinSeconds:  defaultSilenceMinSeconds,
			TimeoutSeconds:     defaultExtractTimeoutSeconds,
		},
		Cache: Cache{
			Enabled: true,
		},
		Output: Output{
			Colour:   defaultColour,
			Format:   defaultOutputFormat,
			Progress: defaultProgress,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
