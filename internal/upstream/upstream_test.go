package upstream_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"tonetranslate-go/internal/config"
	apperrors "tonetranslate-go/internal/errors"
	"tonetranslate-go/internal/upstream"
	_ "tonetranslate-go/internal/upstream/anthropic"
	_ "tonetranslate-go/internal/upstream/openai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	k, ok := upstream.ParseKind("openai")
	assert.True(t, ok)
	assert.Equal(t, upstream.KindOpenAI, k)
	k, ok = upstream.ParseKind("claude")
	assert.True(t, ok)
	assert.Equal(t, upstream.KindClaude, k)

	for _, bad := range []string{"", "OpenAI", "anthropic", "gemini", " claude"} {
		_, ok := upstream.ParseKind(bad)
		assert.False(t, ok, bad)
	}
}

func TestNewFromConfig(t *testing.T) {
	assert.ElementsMatch(t, []upstream.Kind{upstream.KindOpenAI, upstream.KindClaude}, upstream.Registered())

	cfg := config.Defaults().Providers
	client := upstream.NewHTTPClient(cfg)

	_, err := upstream.NewFromConfig(upstream.KindOpenAI, cfg, client)
	require.ErrorIs(t, err, upstream.ErrCredentialNotConfigured)
	assert.Equal(t, "OpenAI API key is not configured", err.Error())

	_, err = upstream.NewFromConfig(upstream.KindClaude, cfg, client)
	require.ErrorIs(t, err, upstream.ErrCredentialNotConfigured)
	assert.Equal(t, "Anthropic API key is not configured", err.Error())

	cfg.AnthropicKey = "sk-ant"
	cfg.AnthropicModel = "claude-3-haiku-20240307"
	p, err := upstream.NewFromConfig(upstream.KindClaude, cfg, client)
	require.NoError(t, err)
	assert.Equal(t, upstream.KindClaude, p.Kind())
	assert.Equal(t, "claude-3-haiku-20240307", p.Model())

	_, err = upstream.New("gemini", upstream.Settings{APIKey: "x"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, upstream.ErrCredentialNotConfigured)
}

type stubProvider struct{}

func (stubProvider) Kind() upstream.Kind                               { return "stub" }
func (stubProvider) Model() string                                     { return "m" }
func (stubProvider) Translate(context.Context, string) (string, error) { return "", nil }

func TestManagerRegistry(t *testing.T) {
	m := upstream.NewManager()
	m.Register("stub", func(s upstream.Settings) (upstream.Provider, error) {
		if s.APIKey == "" {
			return nil, upstream.NewCredentialError("stub")
		}
		return stubProvider{}, nil
	})
	m.Register("nil", func(upstream.Settings) (upstream.Provider, error) { return nil, nil })
	m.Register("ignored", nil)

	assert.Equal(t, []upstream.Kind{"nil", "stub"}, m.Registered())

	p, err := m.New("stub", upstream.Settings{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "m", p.Model())

	_, err = m.New("stub", upstream.Settings{})
	assert.ErrorIs(t, err, upstream.ErrCredentialNotConfigured)

	_, err = m.New("nil", upstream.Settings{})
	assert.Error(t, err)
}

func TestTranslationErrorWrapping(t *testing.T) {
	cause := apperrors.MapHTTPError(http.StatusServiceUnavailable, []byte(`{"error":{"message":"busy"}}`))
	err := upstream.Wrap(upstream.KindOpenAI, cause)
	assert.Equal(t, "Translation failed: busy", err.Error())
	assert.True(t, upstream.IsRetryable(err))

	again := upstream.Wrap(upstream.KindClaude, fmt.Errorf("ctx: %w", err))
	assert.Same(t, err, again)

	var te *upstream.TranslationError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "busy", te.Reason())
	assert.Equal(t, upstream.KindOpenAI, te.Kind)

	empty := upstream.Wrap(upstream.KindClaude, upstream.NoTranslation(upstream.KindClaude))
	assert.ErrorIs(t, empty, upstream.ErrNoTranslation)
	assert.False(t, upstream.IsRetryable(empty))

	assert.Nil(t, upstream.Wrap(upstream.KindOpenAI, nil))
	assert.False(t, upstream.IsRetryable(errors.New("plain")))
}

func TestRetryAfterAndCritical(t *testing.T) {
	limited := upstream.Wrap(upstream.KindClaude,
		apperrors.MapHTTPError(http.StatusTooManyRequests, nil).WithRetryAfterHeader("4"))
	assert.Equal(t, 4*time.Second, upstream.RetryAfter(limited))
	assert.False(t, upstream.IsCritical(limited))

	denied := upstream.Wrap(upstream.KindOpenAI, apperrors.MapHTTPError(http.StatusUnauthorized, nil))
	assert.Zero(t, upstream.RetryAfter(denied))
	assert.True(t, upstream.IsCritical(denied))

	assert.Zero(t, upstream.RetryAfter(errors.New("plain")))
	assert.False(t, upstream.IsCritical(errors.New("plain")))
}
