package config

const (
	defaultUsersDir     = "~/.local/share/picvoice/users"
	defaultLogDir       = "~/.local/share/picvoice/logs"
	defaultDatabasePath = "~/.local/share/picvoice/picvoice.db"
	defaultBind         = "127.0.0.1:7700"

	defaultAccountEmail = "testuser@gmail.com"

	defaultEncoderBinary = "ffmpeg"
	defaultSampleRate    = 44100
	defaultChannels      = 2
	defaultBitrate       = "192k"
	defaultVideoTimeout  = 30

	defaultMaxUploadMiB = 64

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns the repository default configuration.
func Default() Config {
	return Config{
		Paths: Paths{
			UsersDir:     defaultUsersDir,
			LogDir:       defaultLogDir,
			DatabasePath: defaultDatabasePath,
			Bind:         defaultBind,
		},
		Account: Account{
			Email: defaultAccountEmail,
		},
		Encoder: Encoder{
			Binary:       defaultEncoderBinary,
			SampleRate:   defaultSampleRate,
			Channels:     defaultChannels,
			Bitrate:      defaultBitrate,
			VideoTimeout: defaultVideoTimeout,
		},
		Uploads: Uploads{
			MaxUploadMiB: defaultMaxUploadMiB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
