package config

const (
	defaultStateDir           = "~/.local/share/tally"
	defaultLogDir             = "~/.local/share/tally/logs"
	defaultReservationSeconds = 180
	defaultInactivitySeconds  = 900
	defaultMaxBatchImages     = 10
	defaultAcceptThreshold    = 0.82
	defaultShortMismatchMax   = 1
	defaultLongMismatchMax    = 2
	defaultLongLength         = 8
	defaultNotifyTimeout      = 10
	defaultLogFormat          = "text"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: expandPath(defaultStateDir),
			LogDir:   expandPath(defaultLogDir),
		},
		Queue: Queue{
			ReservationSeconds: defaultReservationSeconds,
			PositionUpdates:    true,
		},
		Session: Session{
			InactivitySeconds: defaultInactivitySeconds,
			MaxBatchImages:    defaultMaxBatchImages,
		},
		Matching: Matching{
			AcceptThreshold:  defaultAcceptThreshold,
			ShortMismatchMax: defaultShortMismatchMax,
			LongMismatchMax:  defaultLongMismatchMax,
			LongLength:       defaultLongLength,
		},
		OCR: OCR{
			Languages: []string{"eng", "pol"},
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			QueuePosition:  true,
			TurnReady:      true,
			SessionExpired: true,
			ResultsSaved:   true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
