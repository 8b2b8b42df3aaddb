package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLoggerFields(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	r := gin.New()
	r.Use(RequestID(), RequestLogger())
	r.POST("/api/translate", func(c *gin.Context) {
		c.Set("provider", "claude")
		c.Set("demo", true)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/translate", nil)
	req.Header.Set("X-Request-ID", "rid-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	var entry *log.Entry
	for _, e := range hook.AllEntries() {
		if e.Message == "http_request" {
			entry = e
		}
	}
	require.NotNil(t, entry)
	assert.Equal(t, http.StatusOK, entry.Data["status"])
	assert.Equal(t, "claude", entry.Data["provider"])
	assert.Equal(t, true, entry.Data["demo"])
	assert.Equal(t, "rid-1", entry.Data["request_id"])
}
