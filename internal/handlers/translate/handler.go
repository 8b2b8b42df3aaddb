package translate

import (
	"net/http"
	"sync/atomic"

	"tonetranslate-go/internal/config"
	"tonetranslate-go/internal/events"
	"tonetranslate-go/internal/prompts"
	"tonetranslate-go/internal/upstream"
	"tonetranslate-go/internal/usage"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// ProviderFactory builds the adapter for kind from the live configuration.
// It must return *upstream.CredentialError when kind's key is missing.
type ProviderFactory func(kind upstream.Kind, cfg *config.Config, client *http.Client) (upstream.Provider, error)

// DefaultFactory goes through the process-wide upstream registry.
func DefaultFactory(kind upstream.Kind, cfg *config.Config, client *http.Client) (upstream.Provider, error) {
	return upstream.NewFromConfig(kind, cfg.Providers, client)
}

// runtimeState is rebuilt on every config change and swapped atomically.
type runtimeState struct {
	client *http.Client
	store  *prompts.Store
}

// Handler serves /api/translate, /api/providers and /api/usage.
type Handler struct {
	cm        *config.ConfigManager
	factory   ProviderFactory
	publisher events.Publisher
	tracker   *usage.Tracker

	state atomic.Pointer[runtimeState]
}

// Option customizes a Handler.
type Option func(*Handler)

// WithFactory replaces the provider factory (tests use fakes).
func WithFactory(f ProviderFactory) Option {
	return func(h *Handler) {
		if f != nil {
			h.factory = f
		}
	}
}

// WithPublisher sets where translation.completed events go.
func WithPublisher(p events.Publisher) Option {
	return func(h *Handler) { h.publisher = p }
}

// WithUsageTracker enables GET /api/usage.
func WithUsageTracker(t *usage.Tracker) Option {
	return func(h *Handler) { h.tracker = t }
}

// New builds the handler and subscribes it to config changes so the shared
// HTTP client and prompt templates follow reloads.
func New(cm *config.ConfigManager, opts ...Option) *Handler {
	h := &Handler{cm: cm, factory: DefaultFactory}
	for _, opt := range opts {
		opt(h)
	}
	h.Refresh(cm.Current())
	cm.OnChange(h.Refresh)
	return h
}

// Refresh rebuilds the transport and template store from cfg. An invalid
// template override keeps the previous store.
func (h *Handler) Refresh(cfg *config.Config) {
	if cfg == nil {
		return
	}
	next := &runtimeState{client: upstream.NewHTTPClient(cfg.Providers)}
	store, err := prompts.WithOverrides(promptOverrides(cfg.Prompts))
	if err != nil {
		log.WithError(err).Warn("invalid prompt overrides, keeping previous templates")
		if prev := h.state.Load(); prev != nil {
			store = prev.store
		} else {
			store = prompts.Default()
		}
	}
	next.store = store
	h.state.Store(next)
}

// Register mounts the routes on an /api group.
func (h *Handler) Register(api gin.IRoutes) {
	api.POST("/translate", h.Translate)
	api.GET("/providers", h.Providers)
	api.GET("/usage", h.Usage)
}

func (h *Handler) runtime() *runtimeState {
	if s := h.state.Load(); s != nil {
		return s
	}
	return &runtimeState{client: http.DefaultClient, store: prompts.Default()}
}

func promptOverrides(p config.PromptsConfig) map[prompts.Tone]string {
	return map[prompts.Tone]string{
		prompts.Formal: p.Formal,
		prompts.Casual: p.Casual,
		prompts.Normal: p.Normal,
	}
}
