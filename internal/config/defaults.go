package config

const (
	defaultMediaDir           = "~/media"
	defaultLogDir             = "~/.local/share/mosaic/logs"
	defaultBind               = "127.0.0.1:8462"
	defaultLoginRatePerMinute = 20
	defaultTokenTTLHours      = 24
	defaultQueueSize          = 1024
	defaultThumbnailQuality   = 4
	defaultThumbnailWorkers   = 2
	defaultWatcherSettleMS    = 500
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultTitle              = "Mosaic"
	defaultPrimaryColor       = "#ff69b4"
	defaultBackgroundColor    = "#000000"

	// placeholderSecret is the value shipped in the sample config; it is
	// treated the same as an empty secret.
	placeholderSecret = "change-me"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			MediaDir: defaultMediaDir,
			LogDir:   defaultLogDir,
		},
		Server: Server{
			Bind:               defaultBind,
			Gzip:               true,
			LoginRatePerMinute: defaultLoginRatePerMinute,
		},
		Auth: Auth{
			TokenTTLHours: defaultTokenTTLHours,
		},
		UI: UI{
			Title:           defaultTitle,
			PrimaryColor:    defaultPrimaryColor,
			BackgroundColor: defaultBackgroundColor,
		},
		Pipeline: Pipeline{
			QueueSize: defaultQueueSize,
		},
		Thumbnails: Thumbnails{
			Enabled:       true,
			Quality:       defaultThumbnailQuality,
			MaxConcurrent: defaultThumbnailWorkers,
		},
		Catalog: Catalog{
			Enabled: true,
		},
		Watcher: Watcher{
			Enabled:  true,
			SettleMS: defaultWatcherSettleMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
