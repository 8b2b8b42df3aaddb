package config

import (
	"strings"
	"time"
)

// Config is the runtime configuration. File keys follow the yaml/json tags;
// environment variables override file values (see env_loader.go).
type Config struct {
	Server      ServerConfig      `yaml:"server" json:"server"`
	Security    SecurityConfig    `yaml:"security" json:"security"`
	Providers   ProvidersConfig   `yaml:"providers" json:"providers"`
	Translation TranslationConfig `yaml:"translation" json:"translation"`
	Retry       RetryConfig       `yaml:"retry" json:"retry"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit" json:"rate_limit"`
	Logging     LoggingConfig     `yaml:"logging" json:"logging"`
	Usage       UsageConfig       `yaml:"usage" json:"usage"`
	Prompts     PromptsConfig     `yaml:"prompts" json:"prompts"`
}

// ServerConfig 服务器和端点配置
type ServerConfig struct {
	Port     string `yaml:"port" json:"port"`
	BasePath string `yaml:"base_path" json:"base_path"`
}

// SecurityConfig 安全和访问控制配置
type SecurityConfig struct {
	Debug bool `yaml:"debug" json:"debug"`
	// AccessKey, when set, is required on /api routes. AccessKeyHash is a bcrypt alternative.
	AccessKey     string `yaml:"access_key" json:"access_key"`
	AccessKeyHash string `yaml:"access_key_hash" json:"access_key_hash"`
}

// ProvidersConfig 上游凭证和传输配置
type ProvidersConfig struct {
	OpenAIKey        string `yaml:"openai_api_key" json:"openai_api_key"`
	AnthropicKey     string `yaml:"anthropic_api_key" json:"anthropic_api_key"`
	OpenAIBaseURL    string `yaml:"openai_base_url" json:"openai_base_url"`
	AnthropicBaseURL string `yaml:"anthropic_base_url" json:"anthropic_base_url"`
	OpenAIModel      string `yaml:"openai_model" json:"openai_model"`
	AnthropicModel   string `yaml:"anthropic_model" json:"anthropic_model"`
	ProxyURL         string `yaml:"proxy_url" json:"proxy_url"`

	DialTimeoutSec           int `yaml:"dial_timeout_sec" json:"dial_timeout_sec"`
	TLSHandshakeTimeoutSec   int `yaml:"tls_handshake_timeout_sec" json:"tls_handshake_timeout_sec"`
	ResponseHeaderTimeoutSec int `yaml:"response_header_timeout_sec" json:"response_header_timeout_sec"`
}

// HasOpenAIKey reports whether the OpenAI credential is present.
func (p ProvidersConfig) HasOpenAIKey() bool { return strings.TrimSpace(p.OpenAIKey) != "" }

// HasAnthropicKey reports whether the Anthropic credential is present.
func (p ProvidersConfig) HasAnthropicKey() bool { return strings.TrimSpace(p.AnthropicKey) != "" }

// AnyConfigured is false when the service has to answer every request in demo mode.
func (p ProvidersConfig) AnyConfigured() bool { return p.HasOpenAIKey() || p.HasAnthropicKey() }

// TranslationConfig 翻译编排配置
type TranslationConfig struct {
	// TimeoutSec bounds each tone's vendor call; 0 disables the per-call deadline.
	TimeoutSec  int `yaml:"timeout_sec" json:"timeout_sec"`
	DemoDelayMs int `yaml:"demo_delay_ms" json:"demo_delay_ms"`
}

func (t TranslationConfig) CallTimeout() time.Duration {
	return time.Duration(t.TimeoutSec) * time.Second
}

func (t TranslationConfig) DemoDelay() time.Duration {
	return time.Duration(t.DemoDelayMs) * time.Millisecond
}

// RetryConfig 重试设置（编排层）
type RetryConfig struct {
	Enabled       bool `yaml:"enabled" json:"enabled"`
	Max           int  `yaml:"max" json:"max"`
	IntervalMs    int  `yaml:"interval_ms" json:"interval_ms"`
	MaxIntervalMs int  `yaml:"max_interval_ms" json:"max_interval_ms"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	RPS     int  `yaml:"rps" json:"rps"`
	Burst   int  `yaml:"burst" json:"burst"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	RequestLog bool   `yaml:"request_log" json:"request_log"`
	LogFile    string `yaml:"log_file" json:"log_file"`
}

// UsageConfig 用量统计存储配置
type UsageConfig struct {
	Backend            string `yaml:"backend" json:"backend"` // memory, file, redis, postgres, mongodb
	FileDir            string `yaml:"file_dir" json:"file_dir"`
	RedisAddr          string `yaml:"redis_addr" json:"redis_addr"`
	RedisPassword      string `yaml:"redis_password" json:"redis_password"`
	RedisDB            int    `yaml:"redis_db" json:"redis_db"`
	RedisPrefix        string `yaml:"redis_prefix" json:"redis_prefix"`
	PostgresDSN        string `yaml:"postgres_dsn" json:"postgres_dsn"`
	MongoURI           string `yaml:"mongo_uri" json:"mongo_uri"`
	MongoDatabase      string `yaml:"mongo_database" json:"mongo_database"`
	PersistIntervalSec int    `yaml:"persist_interval_sec" json:"persist_interval_sec"`
	// Timezone for daily buckets: IANA name or fixed offset like "UTC+9"
	Timezone string `yaml:"timezone" json:"timezone"`
}

// PromptsConfig overrides the built-in tone templates. Empty entries keep the default.
type PromptsConfig struct {
	Formal string `yaml:"formal" json:"formal"`
	Casual string `yaml:"casual" json:"casual"`
	Normal string `yaml:"normal" json:"normal"`
}

// Clone returns a shallow copy; Config holds no reference types.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}
