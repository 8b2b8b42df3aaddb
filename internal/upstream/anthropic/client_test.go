package anthropic

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tonetranslate-go/internal/constants"
	apperrors "tonetranslate-go/internal/errors"
	"tonetranslate-go/internal/upstream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(upstream.Settings{APIKey: "sk-ant-test", BaseURL: srv.URL + "/", HTTPClient: srv.Client()})
	require.NoError(t, err)
	return c
}

func reply(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestTranslateRequestShape(t *testing.T) {
	var captured []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		captured, _ = io.ReadAll(r.Body)
		reply(w, http.StatusOK, `{"id":"msg_1","type":"message","role":"assistant","content":[{"type":"text","text":"Good morning."}],"usage":{"input_tokens":10,"output_tokens":3}}`)
	})

	out, err := c.Translate(context.Background(), "日本語: \"引用\" と $1\n\n英語:")
	require.NoError(t, err)
	assert.Equal(t, "Good morning.", out)

	body := gjson.ParseBytes(captured)
	assert.Equal(t, constants.DefaultAnthropicModel, body.Get("model").String())
	assert.Equal(t, int64(1000), body.Get("max_tokens").Int())
	assert.InDelta(t, 0.3, body.Get("temperature").Float(), 1e-9)
	assert.Equal(t, constants.TranslationSystemPrompt, body.Get("system").String())
	assert.Equal(t, int64(1), body.Get("messages.#").Int())
	assert.Equal(t, "user", body.Get("messages.0.role").String())
	assert.Equal(t, "日本語: \"引用\" と $1\n\n英語:", body.Get("messages.0.content").String())
}

func TestTranslateNoText(t *testing.T) {
	for name, payload := range map[string]string{
		"empty content": `{"content":[]}`,
		"tool block":    `{"content":[{"type":"tool_use","id":"t1","name":"x","input":{}}]}`,
		"empty text":    `{"content":[{"type":"text","text":""}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				reply(w, http.StatusOK, payload)
			})
			_, err := c.Translate(context.Background(), "p")
			require.Error(t, err)
			assert.ErrorIs(t, err, upstream.ErrNoTranslation)
			assert.Equal(t, "Translation failed: No translation received from Claude", err.Error())
		})
	}
}

func TestTranslateVendorErrors(t *testing.T) {
	cases := []struct {
		status    int
		body      string
		message   string
		retryable bool
	}{
		{http.StatusUnauthorized, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`, "invalid x-api-key", false},
		{http.StatusBadRequest, `{"type":"error","error":{"type":"invalid_request_error","message":"max_tokens: too large"}}`, "max_tokens: too large", false},
		{529, `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`, "Overloaded", true},
		{http.StatusTooManyRequests, `not json`, "not json", true},
	}
	for _, tc := range cases {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "7")
			reply(w, tc.status, tc.body)
		})
		_, err := c.Translate(context.Background(), "p")
		require.Error(t, err)

		var te *upstream.TranslationError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, "Translation failed: "+tc.message, err.Error())
		assert.Equal(t, tc.retryable, upstream.IsRetryable(err), "status %d", tc.status)

		var apiErr *apperrors.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, tc.status, apiErr.HTTPStatus)
		assert.Equal(t, 7, apiErr.GetRetryAfter())
	}
}

func TestTranslateNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := New(upstream.Settings{APIKey: "k", BaseURL: url})
	require.NoError(t, err)
	_, err = c.Translate(context.Background(), "p")
	require.Error(t, err)
	var te *upstream.TranslationError
	require.True(t, errors.As(err, &te))
	assert.True(t, te.Retryable())
}

func TestTranslateCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()
	_, err := c.Translate(ctx, "p")
	require.Error(t, err)
	assert.False(t, upstream.IsRetryable(err), "caller cancellation is final")
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New(upstream.Settings{})
	require.Error(t, err)
	var ce *upstream.CredentialError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, upstream.KindClaude, ce.Kind)
	assert.Equal(t, "Anthropic API key is not configured", err.Error())

	c, err := New(upstream.Settings{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultAnthropicModel, c.Model())
	assert.Equal(t, "https://api.anthropic.com/v1/messages", c.endpoint())
}
