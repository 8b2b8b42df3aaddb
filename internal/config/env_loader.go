package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// loadDotEnv populates the process environment from a .env file. Variables that
// are already set win over the file.
func loadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				log.WithError(err).WithField("path", p).Warn("failed to load env file")
			}
			continue
		}
		log.WithField("path", p).Debug("env file loaded")
	}
}

// applyEnv overlays environment variables onto cfg.
func applyEnv(cfg *Config) {
	applyServerEnvVars(cfg)
	applySecurityEnvVars(cfg)
	applyProviderEnvVars(cfg)
	applyTranslationEnvVars(cfg)
	applyRetryEnvVars(cfg)
	applyRateLimitEnvVars(cfg)
	applyLoggingEnvVars(cfg)
	applyUsageEnvVars(cfg)
}

// loadFromEnv loads configuration from defaults and environment variables only.
func loadFromEnv() *Config {
	cfg := Defaults()
	applyEnv(cfg)
	cfg.Server.BasePath = normalizeBasePath(cfg.Server.BasePath)
	return cfg
}

func applyServerEnvVars(cfg *Config) {
	cfg.Server.Port = firstNonEmpty(os.Getenv("PORT"), cfg.Server.Port)
	cfg.Server.BasePath = getenv("BASE_PATH", cfg.Server.BasePath)
}

func applySecurityEnvVars(cfg *Config) {
	setToggleFromEnv("DEBUG", func(v bool) { cfg.Security.Debug = v })
	cfg.Security.AccessKey = getenv("ACCESS_KEY", cfg.Security.AccessKey)
	cfg.Security.AccessKeyHash = getenv("ACCESS_KEY_HASH", cfg.Security.AccessKeyHash)
}

func applyProviderEnvVars(cfg *Config) {
	p := &cfg.Providers
	p.OpenAIKey = strings.TrimSpace(getenv("OPENAI_API_KEY", p.OpenAIKey))
	p.AnthropicKey = strings.TrimSpace(getenv("ANTHROPIC_API_KEY", p.AnthropicKey))
	p.OpenAIBaseURL = getenv("OPENAI_BASE_URL", p.OpenAIBaseURL)
	p.AnthropicBaseURL = getenv("ANTHROPIC_BASE_URL", p.AnthropicBaseURL)
	p.OpenAIModel = getenv("OPENAI_MODEL", p.OpenAIModel)
	p.AnthropicModel = getenv("ANTHROPIC_MODEL", p.AnthropicModel)
	p.ProxyURL = getenv("PROXY_URL", p.ProxyURL)
	setIntFromEnv("DIAL_TIMEOUT_SEC", func(v int) { p.DialTimeoutSec = v })
	setIntFromEnv("TLS_HANDSHAKE_TIMEOUT_SEC", func(v int) { p.TLSHandshakeTimeoutSec = v })
	setIntFromEnv("RESPONSE_HEADER_TIMEOUT_SEC", func(v int) { p.ResponseHeaderTimeoutSec = v })
}

func applyTranslationEnvVars(cfg *Config) {
	setIntFromEnv("TRANSLATION_TIMEOUT_SEC", func(v int) { cfg.Translation.TimeoutSec = v })
	setIntFromEnv("DEMO_DELAY_MS", func(v int) { cfg.Translation.DemoDelayMs = v })
}

func applyRetryEnvVars(cfg *Config) {
	setToggleFromEnv("RETRY_ENABLED", func(v bool) { cfg.Retry.Enabled = v })
	setIntFromEnv("RETRY_MAX", func(v int) { cfg.Retry.Max = v })
	setIntFromEnv("RETRY_INTERVAL_MS", func(v int) { cfg.Retry.IntervalMs = v })
	setIntFromEnv("RETRY_MAX_INTERVAL_MS", func(v int) { cfg.Retry.MaxIntervalMs = v })
}

func applyRateLimitEnvVars(cfg *Config) {
	setToggleFromEnv("RATE_LIMIT_ENABLED", func(v bool) { cfg.RateLimit.Enabled = v })
	setIntFromEnv("RATE_LIMIT_RPS", func(v int) { cfg.RateLimit.RPS = v })
	setIntFromEnv("RATE_LIMIT_BURST", func(v int) { cfg.RateLimit.Burst = v })
}

func applyLoggingEnvVars(cfg *Config) {
	setToggleFromEnv("REQUEST_LOG_ENABLED", func(v bool) { cfg.Logging.RequestLog = v })
	cfg.Logging.LogFile = getenv("LOG_FILE", cfg.Logging.LogFile)
}

func applyUsageEnvVars(cfg *Config) {
	u := &cfg.Usage
	u.Backend = strings.ToLower(getenv("USAGE_BACKEND", u.Backend))
	u.FileDir = getenv("USAGE_FILE_DIR", u.FileDir)
	u.Timezone = getenv("USAGE_TIMEZONE", u.Timezone)
	u.RedisAddr = getenv("REDIS_ADDR", u.RedisAddr)
	u.RedisPassword = getenv("REDIS_PASSWORD", u.RedisPassword)
	u.RedisPrefix = getenv("REDIS_PREFIX", u.RedisPrefix)
	setIntFromEnv("REDIS_DB", func(v int) { u.RedisDB = v })
	u.PostgresDSN = getenv("POSTGRES_DSN", u.PostgresDSN)
	u.MongoURI = getenv("MONGODB_URI", u.MongoURI)
	u.MongoDatabase = getenv("MONGODB_DATABASE", u.MongoDatabase)
	setIntFromEnv("USAGE_PERSIST_INTERVAL_SEC", func(v int) { u.PersistIntervalSec = v })
}
