package config

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"tonetranslate-go/internal/events"
	"tonetranslate-go/internal/monitoring"

	log "github.com/sirupsen/logrus"
)

// ConfigManager owns the live configuration and hot-reloads it from disk.
type ConfigManager struct {
	mu         sync.RWMutex
	current    atomic.Pointer[Config]
	configPath string
	lastMod    time.Time
	stopCh     chan struct{}
	stopOnce   sync.Once
	onChange   []func(*Config)
	publisher  events.Publisher
}

// NewConfigManager loads the configuration once and validates it.
func NewConfigManager(configPath string) (*ConfigManager, error) {
	cfg, err := LoadWithFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if res := cfg.Validate(); !res.Valid {
		return nil, res.Err()
	}
	cm := &ConfigManager{
		configPath: expandHome(configPath),
		stopCh:     make(chan struct{}),
	}
	cm.current.Store(cfg)
	if info, err := os.Stat(cm.configPath); err == nil {
		cm.lastMod = info.ModTime()
	}
	return cm, nil
}

// NewStaticManager wraps an already built config; Watch and Reload are no-ops.
func NewStaticManager(cfg *Config) *ConfigManager {
	if cfg == nil {
		cfg = Defaults()
	}
	cm := &ConfigManager{stopCh: make(chan struct{})}
	cm.current.Store(cfg)
	return cm
}

// Current returns the active configuration. Callers must treat it as read-only.
func (cm *ConfigManager) Current() *Config {
	return cm.current.Load()
}

// OnChange registers a callback for configuration changes
func (cm *ConfigManager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.onChange = append(cm.onChange, fn)
}

// SetEventPublisher wires the event hub used to broadcast config updates.
func (cm *ConfigManager) SetEventPublisher(p events.Publisher) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.publisher = p
}

// Path returns the watched config file, empty when running from env only.
func (cm *ConfigManager) Path() string { return cm.configPath }

// Reload re-reads file and environment. Invalid configurations are rejected
// and the previous one stays active.
func (cm *ConfigManager) Reload() error {
	if cm.configPath == "" {
		return nil
	}
	next, err := LoadWithFile(cm.configPath)
	if err != nil {
		monitoring.ConfigReloadsTotal.WithLabelValues("error").Inc()
		return err
	}
	if res := next.Validate(); !res.Valid {
		monitoring.ConfigReloadsTotal.WithLabelValues("invalid").Inc()
		return res.Err()
	}
	if info, err := os.Stat(cm.configPath); err == nil {
		cm.mu.Lock()
		cm.lastMod = info.ModTime()
		cm.mu.Unlock()
	}
	prev := cm.current.Swap(next)
	monitoring.ConfigReloadsTotal.WithLabelValues("ok").Inc()
	log.WithField("path", cm.configPath).Info("configuration reloaded")
	logConfigChanges(prev, next)
	cm.emitChange(prev, next)
	return nil
}

// Close stops the watcher goroutine.
func (cm *ConfigManager) Close() {
	cm.stopOnce.Do(func() { close(cm.stopCh) })
}

func (cm *ConfigManager) listenersSnapshot() ([]func(*Config), events.Publisher) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	callbacks := make([]func(*Config), len(cm.onChange))
	copy(callbacks, cm.onChange)
	return callbacks, cm.publisher
}

func (cm *ConfigManager) emitChange(oldCfg, newCfg *Config) {
	callbacks, publisher := cm.listenersSnapshot()

	for _, fn := range callbacks {
		fn(newCfg)
	}

	if publisher != nil && newCfg != nil {
		event := ConfigChangeEvent{
			Path:      cm.configPath,
			UpdatedAt: time.Now().UTC(),
			Providers: ProviderStatusOf(newCfg),
		}
		if oldCfg != nil {
			prev := ProviderStatusOf(oldCfg)
			event.Previous = &prev
		}
		publisher.Publish(context.Background(), events.TopicConfigUpdated, event, nil)
	}
}

// ConfigChangeEvent is the payload broadcast when configuration changes.
// Credentials never leave the manager; only their presence is published.
type ConfigChangeEvent struct {
	Path      string          `json:"path"`
	UpdatedAt time.Time       `json:"updated_at"`
	Providers ProviderStatus  `json:"providers"`
	Previous  *ProviderStatus `json:"previous,omitempty"`
}

// ProviderStatus summarizes which credentials are configured.
type ProviderStatus struct {
	OpenAI    bool `json:"openai"`
	Anthropic bool `json:"anthropic"`
}

func ProviderStatusOf(cfg *Config) ProviderStatus {
	if cfg == nil {
		return ProviderStatus{}
	}
	return ProviderStatus{OpenAI: cfg.Providers.HasOpenAIKey(), Anthropic: cfg.Providers.HasAnthropicKey()}
}
