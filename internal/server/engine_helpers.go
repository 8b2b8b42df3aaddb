package server

import (
	"net/http"

	"tonetranslate-go/internal/config"
	"tonetranslate-go/internal/constants"
	mw "tonetranslate-go/internal/middleware"

	"github.com/gin-gonic/gin"
)

// applyStandardEngineSettings installs the middleware chain. Rate limiting and
// request logging are fixed at startup; changing them needs a restart.
func applyStandardEngineSettings(engine *gin.Engine, cfg *config.Config) {
	if !cfg.Security.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	_ = engine.SetTrustedProxies([]string{})

	engine.Use(mw.Recovery(), mw.RequestID(), mw.Metrics())
	engine.Use(mw.CORS())
	if cfg.Logging.RequestLog {
		engine.Use(mw.RequestLogger())
	}
	if cfg.RateLimit.Enabled {
		engine.Use(mw.RateLimiterAutoKey(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}
}

// registerMetaBasePath lets a browser client discover the base path and
// whether it has to send an access key.
func registerMetaBasePath(r gin.IRoutes, cm *config.ConfigManager) {
	r.GET("/meta/base-path", func(c *gin.Context) {
		cfg := cm.Current()
		setNoCacheHeaders(c)
		c.JSON(http.StatusOK, gin.H{
			"base_path":           cfg.Server.BasePath,
			"api_base":            joinBasePath(cfg.Server.BasePath, "/api"),
			"access_key_required": config.AccessKeyRequired(cfg),
			"version":             constants.Version,
		})
	})
}
