package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"tonetranslate-go/internal/constants"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// Watch reloads the configuration whenever the config file changes, until ctx
// is done or Close is called. It returns immediately; watching runs in the background.
func (cm *ConfigManager) Watch(ctx context.Context) {
	if cm.configPath == "" {
		return
	}
	if _, err := os.Stat(cm.configPath); err != nil {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.WithError(err).Warn("failed to create file watcher, falling back to polling")
		cm.startPollingWatcher(ctx)
		return
	}

	// Watch the directory to catch atomic writes (rename operations)
	configDir := filepath.Dir(cm.configPath)
	if err := watcher.Add(configDir); err != nil {
		log.WithError(err).WithField("dir", configDir).Warn("failed to watch config directory, falling back to polling")
		_ = watcher.Close()
		cm.startPollingWatcher(ctx)
		return
	}

	log.WithField("path", cm.configPath).Info("file watcher started using fsnotify")

	go func() {
		defer watcher.Close()

		var debounceTimer *time.Timer
		target := filepath.Clean(cm.configPath)

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(constants.ConfigReloadDebounce, cm.reloadAndLog)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("file watcher error")

			case <-ctx.Done():
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				return
			case <-cm.stopCh:
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				return
			}
		}
	}()
}

// startPollingWatcher is a fallback when fsnotify is not available
func (cm *ConfigManager) startPollingWatcher(ctx context.Context) {
	ticker := time.NewTicker(constants.ConfigPollInterval)
	log.WithField("interval", constants.ConfigPollInterval.String()).Info("file watcher started using polling")

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cm.checkAndReload()
			case <-ctx.Done():
				return
			case <-cm.stopCh:
				return
			}
		}
	}()
}

func (cm *ConfigManager) checkAndReload() {
	info, err := os.Stat(cm.configPath)
	if err != nil {
		return
	}
	cm.mu.RLock()
	last := cm.lastMod
	cm.mu.RUnlock()
	if info.ModTime().After(last) {
		cm.reloadAndLog()
	}
}

func (cm *ConfigManager) reloadAndLog() {
	if err := cm.Reload(); err != nil {
		log.WithError(err).WithField("path", cm.configPath).Warn("failed to reload config; keeping previous configuration")
	}
}

func logConfigChanges(old, new *Config) {
	if old == nil || new == nil {
		return
	}
	if old.Providers.HasOpenAIKey() != new.Providers.HasOpenAIKey() {
		log.WithFields(log.Fields{"field": "openai_api_key", "configured": new.Providers.HasOpenAIKey()}).Info("config changed")
	}
	if old.Providers.HasAnthropicKey() != new.Providers.HasAnthropicKey() {
		log.WithFields(log.Fields{"field": "anthropic_api_key", "configured": new.Providers.HasAnthropicKey()}).Info("config changed")
	}
	if old.Translation.TimeoutSec != new.Translation.TimeoutSec {
		log.WithFields(log.Fields{"field": "translation.timeout_sec", "old": old.Translation.TimeoutSec, "new": new.Translation.TimeoutSec}).Info("config changed")
	}
	if old.Translation.DemoDelayMs != new.Translation.DemoDelayMs {
		log.WithFields(log.Fields{"field": "translation.demo_delay_ms", "old": old.Translation.DemoDelayMs, "new": new.Translation.DemoDelayMs}).Info("config changed")
	}
	if old.Security.Debug != new.Security.Debug {
		log.WithFields(log.Fields{"field": "debug", "old": old.Security.Debug, "new": new.Security.Debug}).Info("config changed")
	}
	if old.Server.Port != new.Server.Port {
		log.WithFields(log.Fields{"field": "port", "old": old.Server.Port, "new": new.Server.Port}).Warn("port change requires a restart")
	}
}
