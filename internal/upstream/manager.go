package upstream

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"tonetranslate-go/internal/config"
)

// Settings 是构造单个 provider 所需的全部参数。
type Settings struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// SettingsFor 从配置中取出 kind 对应的凭证、地址和模型。
func SettingsFor(kind Kind, p config.ProvidersConfig, client *http.Client) Settings {
	s := Settings{HTTPClient: client}
	switch kind {
	case KindOpenAI:
		s.APIKey, s.BaseURL, s.Model = strings.TrimSpace(p.OpenAIKey), p.OpenAIBaseURL, p.OpenAIModel
	case KindClaude:
		s.APIKey, s.BaseURL, s.Model = strings.TrimSpace(p.AnthropicKey), p.AnthropicBaseURL, p.AnthropicModel
	}
	return s
}

// Constructor 构造一个 provider；凭证缺失时必须返回 *CredentialError。
type Constructor func(Settings) (Provider, error)

// Manager 维护 kind -> 构造函数的注册表。
type Manager struct {
	mu    sync.RWMutex
	ctors map[Kind]Constructor
}

// NewManager 创建新的 provider 管理器。
func NewManager() *Manager {
	return &Manager{ctors: make(map[Kind]Constructor)}
}

// Register 注册构造函数（后注册的覆盖先注册的）。
func (m *Manager) Register(kind Kind, ctor Constructor) {
	if ctor == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctors[kind] = ctor
}

// Registered 返回已注册的 kind，按名称排序。
func (m *Manager) Registered() []Kind {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Kind, 0, len(m.ctors))
	for k := range m.ctors {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// New 构造 kind 对应的 provider。失败时不会返回半成品。
func (m *Manager) New(kind Kind, s Settings) (Provider, error) {
	m.mu.RLock()
	ctor, ok := m.ctors[kind]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("provider %q is not registered", kind)
	}
	p, err := ctor(s)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("provider %q constructor returned nil", kind)
	}
	return p, nil
}

var defaultManager = NewManager()

// Register adds a constructor to the process-wide manager. Vendor packages
// call it from init.
func Register(kind Kind, ctor Constructor) { defaultManager.Register(kind, ctor) }

// Registered lists kinds known to the process-wide manager.
func Registered() []Kind { return defaultManager.Registered() }

// New builds a provider through the process-wide manager.
func New(kind Kind, s Settings) (Provider, error) { return defaultManager.New(kind, s) }

// NewFromConfig is New with settings taken from the providers config.
func NewFromConfig(kind Kind, p config.ProvidersConfig, client *http.Client) (Provider, error) {
	return New(kind, SettingsFor(kind, p, client))
}
