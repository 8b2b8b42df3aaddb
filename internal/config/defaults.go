package config

import (
	"tonetranslate-go/internal/constants"
)

// DefaultValues centralizes all default configuration values
type DefaultValues struct {
	Port     string
	BasePath string

	OpenAIModel      string
	AnthropicModel   string
	OpenAIBaseURL    string
	AnthropicBaseURL string

	// HTTP Timeouts (seconds)
	DialTimeoutSec           int
	TLSHandshakeTimeoutSec   int
	ResponseHeaderTimeoutSec int

	TranslationTimeoutSec int
	DemoDelayMs           int

	RetryEnabled       bool
	RetryMax           int
	RetryIntervalMs    int
	RetryMaxIntervalMs int

	RateLimitEnabled bool
	RateLimitRPS     int
	RateLimitBurst   int

	UsageBackend            string
	UsageFileDir            string
	RedisAddr               string
	RedisPrefix             string
	UsagePersistIntervalSec int
	UsageTimezone           string
}

// GetDefaults returns the default configuration values
func GetDefaults() DefaultValues {
	return DefaultValues{
		Port:     "3000",
		BasePath: "",

		OpenAIModel:      constants.DefaultOpenAIModel,
		AnthropicModel:   constants.DefaultAnthropicModel,
		OpenAIBaseURL:    constants.DefaultOpenAIBaseURL,
		AnthropicBaseURL: constants.DefaultAnthropicBaseURL,

		DialTimeoutSec:           int(constants.DefaultDialTimeout.Seconds()),
		TLSHandshakeTimeoutSec:   int(constants.DefaultTLSHandshakeTimeout.Seconds()),
		ResponseHeaderTimeoutSec: int(constants.DefaultResponseHeaderTimeout.Seconds()),

		TranslationTimeoutSec: int(constants.TranslationCallTimeout.Seconds()),
		DemoDelayMs:           int(constants.DemoResponseDelay.Milliseconds()),

		RetryEnabled:       false,
		RetryMax:           constants.DefaultMaxRetries,
		RetryIntervalMs:    int(constants.DefaultRetryInterval.Milliseconds()),
		RetryMaxIntervalMs: int(constants.DefaultMaxRetryDelay.Milliseconds()),

		RateLimitEnabled: false,
		RateLimitRPS:     10,
		RateLimitBurst:   20,

		UsageBackend:            "memory",
		UsageFileDir:            "./data/usage",
		RedisAddr:               "localhost:6379",
		RedisPrefix:             "tonetranslate:",
		UsagePersistIntervalSec: int(constants.UsagePersistInterval.Seconds()),
		UsageTimezone:           "UTC",
	}
}

// Defaults builds a Config populated with GetDefaults.
func Defaults() *Config {
	d := GetDefaults()
	return &Config{
		Server: ServerConfig{Port: d.Port, BasePath: d.BasePath},
		Providers: ProvidersConfig{
			OpenAIBaseURL:            d.OpenAIBaseURL,
			AnthropicBaseURL:         d.AnthropicBaseURL,
			OpenAIModel:              d.OpenAIModel,
			AnthropicModel:           d.AnthropicModel,
			DialTimeoutSec:           d.DialTimeoutSec,
			TLSHandshakeTimeoutSec:   d.TLSHandshakeTimeoutSec,
			ResponseHeaderTimeoutSec: d.ResponseHeaderTimeoutSec,
		},
		Translation: TranslationConfig{
			TimeoutSec:  d.TranslationTimeoutSec,
			DemoDelayMs: d.DemoDelayMs,
		},
		Retry: RetryConfig{
			Enabled:       d.RetryEnabled,
			Max:           d.RetryMax,
			IntervalMs:    d.RetryIntervalMs,
			MaxIntervalMs: d.RetryMaxIntervalMs,
		},
		RateLimit: RateLimitConfig{
			Enabled: d.RateLimitEnabled,
			RPS:     d.RateLimitRPS,
			Burst:   d.RateLimitBurst,
		},
		Usage: UsageConfig{
			Backend:            d.UsageBackend,
			FileDir:            d.UsageFileDir,
			RedisAddr:          d.RedisAddr,
			RedisPrefix:        d.RedisPrefix,
			PersistIntervalSec: d.UsagePersistIntervalSec,
			Timezone:           d.UsageTimezone,
		},
	}
}
