package config

import "golang.org/x/crypto/bcrypt"

// CheckAccessKey verifies whether the provided key matches the configured access credential.
func CheckAccessKey(cfg *Config, candidate string) bool {
	if cfg == nil || candidate == "" {
		return false
	}
	if cfg.Security.AccessKey != "" && candidate == cfg.Security.AccessKey {
		return true
	}
	if cfg.Security.AccessKeyHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(cfg.Security.AccessKeyHash), []byte(candidate)); err == nil {
			return true
		}
	}
	return false
}

// AccessKeyRequired reports whether /api routes are protected.
func AccessKeyRequired(cfg *Config) bool {
	return cfg != nil && (cfg.Security.AccessKey != "" || cfg.Security.AccessKeyHash != "")
}

// AccessKeyValidator returns a closure suitable for middleware validation.
// It reads the live configuration so rotated keys apply without a restart.
func AccessKeyValidator(cm *ConfigManager) func(string) bool {
	return func(candidate string) bool {
		return CheckAccessKey(cm.Current(), candidate)
	}
}
