package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tonetranslate-go/internal/config"
	"tonetranslate-go/internal/events"
	"tonetranslate-go/internal/upstream"
	"tonetranslate-go/internal/usage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type echoProvider struct{ kind upstream.Kind }

func (p echoProvider) Kind() upstream.Kind { return p.kind }
func (p echoProvider) Model() string       { return "echo" }
func (p echoProvider) Translate(_ context.Context, prompt string) (string, error) {
	return "ok", nil
}

func echoFactory(kind upstream.Kind, cfg *config.Config, _ *http.Client) (upstream.Provider, error) {
	if upstream.SettingsFor(kind, cfg.Providers, nil).APIKey == "" {
		return nil, upstream.NewCredentialError(kind)
	}
	return echoProvider{kind: kind}, nil
}

func testConfig(mutate func(*config.Config)) *config.Config {
	cfg := config.Defaults()
	cfg.Security.Debug = true
	cfg.Translation.DemoDelayMs = 0
	cfg.Providers.OpenAIKey = "sk-test"
	if mutate != nil {
		mutate(cfg)
	}
	return cfg
}

func serve(engine *gin.Engine, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestBuildEngineRoutes(t *testing.T) {
	cm := config.NewStaticManager(testConfig(nil))
	engine, h := BuildEngine(cm, Dependencies{ProviderFactory: echoFactory})
	require.NotNil(t, h)

	w := serve(engine, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = serve(engine, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(engine, http.MethodPost, "/api/translate", `{"text":"こんにちは"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]any{"formal": "ok", "casual": "ok", "normal": "ok"}, body["translations"])

	w = serve(engine, http.MethodGet, "/api/providers", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(engine, http.MethodOptions, "/api/translate", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestBuildEnginePprofOnlyInDebug(t *testing.T) {
	engine, _ := BuildEngine(config.NewStaticManager(testConfig(nil)), Dependencies{ProviderFactory: echoFactory})
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/debug/pprof/heap", "", nil).Code)

	cfg := testConfig(func(c *config.Config) { c.Security.Debug = false })
	engine, _ = BuildEngine(config.NewStaticManager(cfg), Dependencies{ProviderFactory: echoFactory})
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/debug/pprof/heap", "", nil).Code)
}

func TestBuildEngineBasePath(t *testing.T) {
	cm := config.NewStaticManager(testConfig(func(c *config.Config) { c.Server.BasePath = "/tt" }))
	engine, _ := BuildEngine(cm, Dependencies{ProviderFactory: echoFactory})

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/tt/healthz", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/healthz", "", nil).Code)

	w := serve(engine, http.MethodGet, "/tt/meta/base-path", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var meta map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))
	assert.Equal(t, "/tt", meta["base_path"])
	assert.Equal(t, "/tt/api", meta["api_base"])
	assert.Equal(t, false, meta["access_key_required"])
}

func TestBuildEngineAccessKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-secret"), bcrypt.MinCost)
	require.NoError(t, err)
	cm := config.NewStaticManager(testConfig(func(c *config.Config) {
		c.Security.AccessKey = "plain-secret"
		c.Security.AccessKeyHash = string(hash)
	}))
	engine, _ := BuildEngine(cm, Dependencies{ProviderFactory: echoFactory})

	w := serve(engine, http.MethodGet, "/api/providers", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"API key not provided"}`, w.Body.String())

	w = serve(engine, http.MethodGet, "/api/providers", "", map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/providers", "", map[string]string{"Authorization": "Bearer plain-secret"}).Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/providers?key=hashed-secret", "", nil).Code)

	// health and metrics stay public
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/metrics", "", nil).Code)
}

func TestBuildEngineRateLimit(t *testing.T) {
	cm := config.NewStaticManager(testConfig(func(c *config.Config) {
		c.RateLimit.Enabled = true
		c.RateLimit.RPS = 1
		c.RateLimit.Burst = 1
	}))
	engine, _ := BuildEngine(cm, Dependencies{ProviderFactory: echoFactory})

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/providers", "", nil).Code)
	w := serve(engine, http.MethodGet, "/api/providers", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestBuildEngineRecordsUsageThroughEvents(t *testing.T) {
	hub := events.NewHub()
	tracker := usage.NewTracker(usage.NewMemoryStorage(), 0)
	tracker.Subscribe(hub)

	cm := config.NewStaticManager(testConfig(nil))
	engine, _ := BuildEngine(cm, Dependencies{Events: hub, Usage: tracker, ProviderFactory: echoFactory})

	serve(engine, http.MethodPost, "/api/translate", `{"text":"一"}`, nil)
	w := serve(engine, http.MethodGet, "/api/usage", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 1, body["total_requests"])
}

func TestJoinBasePath(t *testing.T) {
	assert.Equal(t, "/api", joinBasePath("", "/api"))
	assert.Equal(t, "", joinBasePath("", ""))
	assert.Equal(t, "/tt", joinBasePath("/tt", ""))
	assert.Equal(t, "/tt/", joinBasePath("/tt", "/"))
	assert.Equal(t, "/tt/api", joinBasePath("/tt", "/api"))
	assert.Equal(t, "/tt/api", joinBasePath("/tt", "api"))
}
