package server

import (
	"net/http"

	"tonetranslate-go/internal/config"
	"tonetranslate-go/internal/events"
	th "tonetranslate-go/internal/handlers/translate"
	mw "tonetranslate-go/internal/middleware"
	"tonetranslate-go/internal/usage"

	// vendor adapters register themselves with the upstream registry
	_ "tonetranslate-go/internal/upstream/anthropic"
	_ "tonetranslate-go/internal/upstream/openai"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Dependencies encapsulates runtime services required to build the HTTP engine.
type Dependencies struct {
	Events          *events.Hub
	Usage           *usage.Tracker
	ProviderFactory th.ProviderFactory
}

// BuildEngine constructs the Gin engine serving the translation API. Routes
// read cm.Current() per request, so reloads apply without rebuilding.
func BuildEngine(cm *config.ConfigManager, deps Dependencies) (*gin.Engine, *th.Handler) {
	cfg := cm.Current()

	engine := gin.New()
	applyStandardEngineSettings(engine, cfg)

	if cfg.Security.Debug {
		registerPprof(engine)
	}

	basePath := cfg.Server.BasePath
	root := engine.Group(basePath)

	opts := []th.Option{th.WithFactory(deps.ProviderFactory)}
	if deps.Events != nil {
		opts = append(opts, th.WithPublisher(deps.Events))
	}
	if deps.Usage != nil {
		opts = append(opts, th.WithUsageTracker(deps.Usage))
	}
	handler := th.New(cm, opts...)
	registerAPIRoutes(root, cm, handler)

	root.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	root.GET("/metrics", mw.MetricsHandler(nil))
	registerMetaBasePath(root, cm)

	if !config.AccessKeyRequired(cfg) {
		log.Warn("no access key configured, /api routes are public")
	}
	return engine, handler
}
