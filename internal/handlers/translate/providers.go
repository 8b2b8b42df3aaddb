package translate

import (
	"net/http"

	"tonetranslate-go/internal/config"
	"tonetranslate-go/internal/upstream"

	"github.com/gin-gonic/gin"
)

type providerInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Model      string `json:"model"`
	Configured bool   `json:"configured"`
}

type providersResponse struct {
	Success   bool           `json:"success"`
	Default   string         `json:"default"`
	Demo      bool           `json:"demo"`
	Providers []providerInfo `json:"providers"`
}

// Providers handles GET /api/providers for the UI provider picker.
// Credentials are reported by presence only.
func (h *Handler) Providers(c *gin.Context) {
	cfg := h.cm.Current()
	c.JSON(http.StatusOK, providersResponse{
		Success:   true,
		Default:   string(upstream.KindOpenAI),
		Demo:      !cfg.Providers.AnyConfigured(),
		Providers: listProviders(cfg),
	})
}

func listProviders(cfg *config.Config) []providerInfo {
	out := make([]providerInfo, 0, len(upstream.Kinds()))
	for _, kind := range upstream.Kinds() {
		s := upstream.SettingsFor(kind, cfg.Providers, nil)
		out = append(out, providerInfo{
			ID:         string(kind),
			Name:       kind.Label(),
			Model:      s.Model,
			Configured: s.APIKey != "",
		})
	}
	return out
}
