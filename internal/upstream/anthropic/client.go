package anthropic

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tonetranslate-go/internal/constants"
	apperrors "tonetranslate-go/internal/errors"
	"tonetranslate-go/internal/logging"
	mw "tonetranslate-go/internal/middleware"
	"tonetranslate-go/internal/monitoring/tracing"
	"tonetranslate-go/internal/upstream"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func init() {
	upstream.Register(upstream.KindClaude, func(s upstream.Settings) (upstream.Provider, error) {
		return New(s)
	})
}

// Client talks to the Anthropic messages API.
type Client struct {
	cli     *http.Client
	apiKey  string
	baseURL string
	model   string
}

var _ upstream.Provider = (*Client)(nil)

// New requires an API key; without one it returns *upstream.CredentialError.
func New(s upstream.Settings) (*Client, error) {
	key := strings.TrimSpace(s.APIKey)
	if key == "" {
		return nil, upstream.NewCredentialError(upstream.KindClaude)
	}
	c := &Client{
		cli:     s.HTTPClient,
		apiKey:  key,
		baseURL: strings.TrimRight(s.BaseURL, "/"),
		model:   s.Model,
	}
	if c.cli == nil {
		c.cli = http.DefaultClient
	}
	if c.baseURL == "" {
		c.baseURL = constants.DefaultAnthropicBaseURL
	}
	if c.model == "" {
		c.model = constants.DefaultAnthropicModel
	}
	return c, nil
}

func (c *Client) Kind() upstream.Kind { return upstream.KindClaude }

func (c *Client) Model() string { return c.model }

func (c *Client) endpoint() string { return c.baseURL + "/v1/messages" }

// buildBody assembles the messages request with sjson; the system instruction
// travels in the top-level "system" field.
func (c *Client) buildBody(prompt string) ([]byte, error) {
	body := []byte(`{}`)
	var err error
	set := func(path string, v any) {
		if err == nil {
			body, err = sjson.SetBytes(body, path, v)
		}
	}
	set("model", c.model)
	set("max_tokens", constants.TranslationMaxTokens)
	set("temperature", constants.TranslationTemperature)
	set("system", constants.TranslationSystemPrompt)
	set("messages.0.role", "user")
	set("messages.0.content", prompt)
	return body, err
}

// Translate returns the text of the first content block.
func (c *Client) Translate(ctx context.Context, prompt string) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "upstream/anthropic", "Anthropic.Translate",
		trace.WithAttributes(
			attribute.String("http.method", http.MethodPost),
			attribute.String("http.url", c.endpoint()),
			attribute.String("upstream.model", c.model),
		))
	defer span.End()

	fail := func(apiErr *apperrors.APIError, dur time.Duration, networkErr bool) (string, error) {
		mw.RecordUpstream("anthropic", dur, apiErr.HTTPStatus, networkErr)
		mw.RecordUpstreamModel("anthropic", c.model, apiErr.HTTPStatus, networkErr)
		mw.RecordUpstreamError("anthropic", logging.ErrorKind(apiErr))
		tracing.Fail(span, apiErr, apiErr.Message)
		span.SetAttributes(attribute.Int("http.status_code", apiErr.HTTPStatus))
		return "", upstream.Wrap(upstream.KindClaude, apiErr)
	}

	body, err := c.buildBody(prompt)
	if err != nil {
		return fail(apperrors.New(http.StatusInternalServerError, "invalid_request_error", "invalid_request_error",
			fmt.Sprintf("build request: %v", err)), 0, false)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return fail(apperrors.New(http.StatusInternalServerError, "invalid_request_error", "invalid_request_error",
			fmt.Sprintf("build request: %v", err)), 0, false)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", constants.AnthropicAPIVersion)

	start := time.Now()
	resp, err := c.cli.Do(req)
	if err != nil {
		return fail(apperrors.MapNetworkError(err), time.Since(start), true)
	}
	if resp.StatusCode >= 400 {
		errBody := upstream.ReadErrorBody(resp)
		apiErr := apperrors.MapHTTPError(resp.StatusCode, errBody).WithRetryAfterHeader(resp.Header.Get("Retry-After"))
		return fail(apiErr, time.Since(start), false)
	}
	raw, err := upstream.ReadAll(resp)
	dur := time.Since(start)
	if err != nil {
		return fail(apperrors.MapNetworkError(err), dur, true)
	}

	mw.RecordUpstream("anthropic", dur, resp.StatusCode, false)
	mw.RecordUpstreamModel("anthropic", c.model, resp.StatusCode, false)
	span.SetAttributes(
		attribute.Int("http.status_code", resp.StatusCode),
		attribute.Int64("upstream.output_tokens", gjson.GetBytes(raw, "usage.output_tokens").Int()),
	)

	text := firstText(raw)
	if text == "" {
		tracing.Fail(span, nil, "empty completion")
		mw.RecordUpstreamError("anthropic", "empty_completion")
		return "", upstream.Wrap(upstream.KindClaude, upstream.NoTranslation(upstream.KindClaude))
	}
	tracing.Succeed(span)
	return text, nil
}

// firstText reads content[0].text when the first block is a text block.
func firstText(raw []byte) string {
	first := gjson.GetBytes(raw, "content.0")
	if !first.Exists() {
		return ""
	}
	if t := first.Get("type").String(); t != "" && t != "text" {
		return ""
	}
	return first.Get("text").String()
}
