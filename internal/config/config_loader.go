package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// LoadWithFile builds a Config from defaults, the optional config file, a
// .env file and the process environment, in increasing precedence.
// A missing file is not an error; a malformed one is.
func LoadWithFile(configPath string) (*Config, error) {
	cfg := Defaults()
	if configPath != "" {
		if err := decodeFile(configPath, cfg); err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
			log.WithField("path", configPath).Warn("config file not found, using defaults and environment")
		} else {
			log.WithField("path", configPath).Info("configuration loaded")
		}
	}
	loadDotEnv()
	applyEnv(cfg)
	cfg.Server.BasePath = normalizeBasePath(cfg.Server.BasePath)
	cfg.Usage.Backend = strings.ToLower(strings.TrimSpace(cfg.Usage.Backend))
	if err := cfg.ValidateAndExpandPaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(expandHome(path))
	if err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			if err := json.Unmarshal(data, cfg); err != nil {
				return fmt.Errorf("failed to parse config file (tried YAML and JSON)")
			}
		}
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
