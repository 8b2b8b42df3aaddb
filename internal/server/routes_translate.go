package server

import (
	"tonetranslate-go/internal/config"
	th "tonetranslate-go/internal/handlers/translate"
	mw "tonetranslate-go/internal/middleware"

	"github.com/gin-gonic/gin"
)

// registerAPIRoutes mounts /api behind the optional access key. The key is
// looked up per request so rotating it in the config file takes effect live.
func registerAPIRoutes(root *gin.RouterGroup, cm *config.ConfigManager, h *th.Handler) {
	api := root.Group("/api")
	api.Use(mw.UnifiedAuth(mw.AuthConfig{
		CustomValidator: config.AccessKeyValidator(cm),
		Enabled:         func() bool { return config.AccessKeyRequired(cm.Current()) },
	}))
	h.Register(api)
}
