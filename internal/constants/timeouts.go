package constants

import "time"

const (
	// TranslationCallTimeout bounds a single tone's vendor call.
	TranslationCallTimeout = 60 * time.Second
	// DemoResponseDelay simulates vendor latency for demo responses.
	DemoResponseDelay = 2 * time.Second
	// UsagePersistInterval controls how often the usage tracker flushes counters.
	UsagePersistInterval = 60 * time.Second
	// ConfigReloadDebounce coalesces bursts of file events.
	ConfigReloadDebounce = 100 * time.Millisecond
	// ConfigPollInterval is used when fsnotify is unavailable.
	ConfigPollInterval = 5 * time.Second
	// ServerShutdownTimeout bounds graceful HTTP server shutdown.
	ServerShutdownTimeout = 30 * time.Second
	// ServerReadHeaderTimeout guards against slowloris clients.
	ServerReadHeaderTimeout = 10 * time.Second
)
