package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthConfig holds authentication configuration
type AuthConfig struct {
	// RequiredKey is the expected access key (if empty, CustomValidator decides)
	RequiredKey string
	// CustomValidator is an optional function for custom validation logic
	CustomValidator func(key string) bool
	// Enabled, when set, is consulted per request so auth can be switched by a
	// config reload; returning false lets the request through.
	Enabled func() bool
}

// UnifiedAuth checks the access key supplied as:
// - Authorization: Bearer <token>
// - x-api-key: <token>
// - Query parameter: ?key=<token>
func UnifiedAuth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.RequiredKey == "" && cfg.CustomValidator == nil {
			c.Next()
			return
		}
		if cfg.Enabled != nil && !cfg.Enabled() {
			c.Next()
			return
		}

		providedKey := providedAccessKey(c)
		if providedKey == "" {
			respondUnauthorized(c, "API key not provided")
			return
		}

		valid := false
		if cfg.CustomValidator != nil {
			valid = cfg.CustomValidator(providedKey)
		} else {
			valid = providedKey == cfg.RequiredKey
		}
		if !valid {
			respondUnauthorized(c, "Invalid API key")
			return
		}

		c.Set("api_key", providedKey)
		c.Next()
	}
}

func providedAccessKey(c *gin.Context) string {
	if auth := strings.TrimSpace(c.GetHeader("Authorization")); auth != "" {
		if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
			return strings.TrimSpace(auth[7:])
		}
		return auth
	}
	if key := strings.TrimSpace(c.GetHeader("x-api-key")); key != "" {
		return key
	}
	return strings.TrimSpace(c.Query("key"))
}

func respondUnauthorized(c *gin.Context, message string) {
	abortEnvelope(c, http.StatusUnauthorized, "invalid_api_key", "authentication_error", message)
}
