package logging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tonetranslate-go/internal/config"
	apperrors "tonetranslate-go/internal/errors"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWritesToLogFile(t *testing.T) {
	cfg := config.Defaults()
	cfg.Logging.LogFile = filepath.Join(t.TempDir(), "nested", "app.log")

	var stdout bytes.Buffer
	require.NoError(t, setup(cfg, &stdout))
	defer func() {
		Close()
		log.SetOutput(os.Stderr)
	}()

	log.WithField("k", "v").Info("hello file")
	assert.Equal(t, log.InfoLevel, log.GetLevel())

	data, err := os.ReadFile(cfg.Logging.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello file"`)
	assert.Contains(t, stdout.String(), "hello file")
}

func TestSetupDebugUsesTextFormatter(t *testing.T) {
	cfg := config.Defaults()
	cfg.Security.Debug = true

	var stdout bytes.Buffer
	require.NoError(t, setup(cfg, &stdout))
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetLevel(log.InfoLevel)
	}()

	log.Debug("debug line")
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	assert.True(t, strings.Contains(stdout.String(), "msg=\"debug line\""))
}

func TestWithReq(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/api/translate", nil)
	c.Set("request_id", "rid-1")

	entry := WithReq(c, log.Fields{"provider": "openai", "method": "override"})
	assert.Equal(t, "rid-1", entry.Data["request_id"])
	assert.Equal(t, "/api/translate", entry.Data["path"])
	assert.Equal(t, "override", entry.Data["method"])
	assert.Equal(t, "openai", entry.Data["provider"])

	c.Set("provider", "claude")
	assert.Equal(t, "claude", WithReq(c, nil).Data["provider"])

	assert.NotNil(t, WithReq(nil, nil))
}

func TestErrorKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{errors.New("plain"), "error"},
		{apperrors.MapHTTPError(429, nil), "upstream_429"},
		{apperrors.MapHTTPError(401, nil), "upstream_401"},
		{apperrors.MapHTTPError(400, nil), "upstream_4xx"},
		{apperrors.MapHTTPError(500, nil), "upstream_5xx"},
		{apperrors.MapHTTPError(529, nil), "upstream_5xx"},
		{apperrors.MapNetworkError(context.DeadlineExceeded), "timeout"},
		{apperrors.MapNetworkError(context.Canceled), "canceled"},
		{apperrors.MapNetworkError(errors.New("dial tcp: connection refused")), "network_error"},
		{fmt.Errorf("wrapped: %w", apperrors.MapHTTPError(403, nil)), "upstream_403"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ErrorKind(tc.err), "err=%v", tc.err)
	}
}
