package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"tonetranslate-go/internal/utils"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation error [%s=%s]: %s", e.Field, e.Value, e.Message)
}

// ValidationResult holds the results of configuration validation
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
	Valid    bool
}

// AddError adds a validation error
func (r *ValidationResult) AddError(field, value, message string) {
	r.Errors = append(r.Errors, ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	})
	r.Valid = false
}

// AddWarning adds a validation warning
func (r *ValidationResult) AddWarning(field, value, message string) {
	r.Warnings = append(r.Warnings, ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	})
}

// Err joins all validation errors, nil when the result is valid.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	errs := make([]error, 0, len(r.Errors))
	for _, e := range r.Errors {
		errs = append(errs, e)
	}
	return errors.Join(errs...)
}

// Validate validates the configuration and returns validation results
func (c *Config) Validate() ValidationResult {
	result := ValidationResult{Valid: true}

	if err := validatePort(c.Server.Port); err != nil {
		result.AddError("server.port", c.Server.Port, err.Error())
	}

	if !c.Providers.AnyConfigured() {
		result.AddWarning("providers", "", "no API keys configured; all translations will be served in demo mode")
	}
	for field, raw := range map[string]string{
		"providers.openai_base_url":    c.Providers.OpenAIBaseURL,
		"providers.anthropic_base_url": c.Providers.AnthropicBaseURL,
		"providers.proxy_url":          c.Providers.ProxyURL,
	} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			result.AddError(field, raw, "invalid URL format")
		}
	}
	if strings.TrimSpace(c.Providers.OpenAIModel) == "" {
		result.AddError("providers.openai_model", c.Providers.OpenAIModel, "model cannot be empty")
	}
	if strings.TrimSpace(c.Providers.AnthropicModel) == "" {
		result.AddError("providers.anthropic_model", c.Providers.AnthropicModel, "model cannot be empty")
	}
	if c.Providers.DialTimeoutSec < 0 || c.Providers.DialTimeoutSec > 300 {
		result.AddWarning("providers.dial_timeout_sec", strconv.Itoa(c.Providers.DialTimeoutSec),
			"dial_timeout_sec should be between 0 and 300")
	}
	if c.Providers.ResponseHeaderTimeoutSec < 0 || c.Providers.ResponseHeaderTimeoutSec > 600 {
		result.AddWarning("providers.response_header_timeout_sec", strconv.Itoa(c.Providers.ResponseHeaderTimeoutSec),
			"response_header_timeout_sec should be between 0 and 600")
	}

	if c.Translation.TimeoutSec < 0 {
		result.AddError("translation.timeout_sec", strconv.Itoa(c.Translation.TimeoutSec), "must not be negative")
	}
	if c.Translation.DemoDelayMs < 0 {
		result.AddError("translation.demo_delay_ms", strconv.Itoa(c.Translation.DemoDelayMs), "must not be negative")
	}

	if c.Retry.Max < 0 || c.Retry.Max > 10 {
		result.AddError("retry.max", strconv.Itoa(c.Retry.Max), "retry max should be between 0 and 10")
	}
	if c.Retry.IntervalMs < 0 || c.Retry.MaxIntervalMs < 0 {
		result.AddError("retry.interval_ms", strconv.Itoa(c.Retry.IntervalMs), "retry intervals must not be negative")
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RPS <= 0 {
			result.AddError("rate_limit.rps", strconv.Itoa(c.RateLimit.RPS),
				"must be positive when rate limiting is enabled")
		}
		if c.RateLimit.Burst <= 0 {
			result.AddError("rate_limit.burst", strconv.Itoa(c.RateLimit.Burst),
				"must be positive when rate limiting is enabled")
		}
	}

	validBackends := []string{"memory", "file", "redis", "postgres", "mongodb"}
	if !contains(validBackends, c.Usage.Backend) {
		result.AddError("usage.backend", c.Usage.Backend,
			fmt.Sprintf("must be one of: %s", strings.Join(validBackends, ", ")))
	}
	switch c.Usage.Backend {
	case "redis":
		if c.Usage.RedisAddr == "" {
			result.AddError("usage.redis_addr", c.Usage.RedisAddr, "required when using redis backend")
		}
	case "postgres":
		if c.Usage.PostgresDSN == "" {
			result.AddError("usage.postgres_dsn", "", "required when using postgres backend")
		}
	case "mongodb":
		if c.Usage.MongoURI == "" {
			result.AddError("usage.mongo_uri", "", "required when using mongodb backend")
		}
	case "file":
		if c.Usage.FileDir == "" {
			result.AddWarning("usage.file_dir", c.Usage.FileDir, "using default directory")
		}
	}
	if _, err := utils.ParseLocation(c.Usage.Timezone); err != nil {
		result.AddError("usage.timezone", c.Usage.Timezone, err.Error())
	}

	for field, tpl := range map[string]string{
		"prompts.formal": c.Prompts.Formal,
		"prompts.casual": c.Prompts.Casual,
		"prompts.normal": c.Prompts.Normal,
	} {
		if strings.TrimSpace(tpl) != "" && !strings.Contains(tpl, "{text}") {
			result.AddError(field, tpl, "template must contain {text}")
		}
	}

	if c.Security.AccessKey == "" && c.Security.AccessKeyHash == "" && !c.Security.Debug {
		result.AddWarning("security.access_key", "", "no access key set, /api routes are public")
	}

	return result
}

// validatePort validates a port string
func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("port cannot be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("invalid port number: %v", err)
	}

	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", portNum)
	}

	return nil
}

// contains checks if a slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// ValidateAndExpandPaths validates and expands file paths in configuration
func (c *Config) ValidateAndExpandPaths() error {
	var err error

	if c.Logging.LogFile != "" {
		c.Logging.LogFile, err = expandPath(c.Logging.LogFile)
		if err != nil {
			return fmt.Errorf("invalid log_file path: %v", err)
		}
	}
	if c.Usage.FileDir != "" {
		c.Usage.FileDir, err = expandPath(c.Usage.FileDir)
		if err != nil {
			return fmt.Errorf("invalid usage.file_dir path: %v", err)
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in file paths
func expandPath(path string) (string, error) {
	if path == "" {
		return path, nil
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot get home directory: %v", err)
		}
		path = filepath.Join(home, path[2:])
	}

	path = os.ExpandEnv(path)

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot convert to absolute path: %v", err)
	}

	return absPath, nil
}
