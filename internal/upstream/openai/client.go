package openai

import (
	"context"
	"errors"
	"strings"
	"time"

	"tonetranslate-go/internal/constants"
	apperrors "tonetranslate-go/internal/errors"
	"tonetranslate-go/internal/logging"
	mw "tonetranslate-go/internal/middleware"
	"tonetranslate-go/internal/monitoring/tracing"
	"tonetranslate-go/internal/upstream"

	goopenai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func init() {
	upstream.Register(upstream.KindOpenAI, func(s upstream.Settings) (upstream.Provider, error) {
		return New(s)
	})
}

// Client calls the OpenAI chat completions API through go-openai.
type Client struct {
	api     *goopenai.Client
	model   string
	baseURL string
}

var _ upstream.Provider = (*Client)(nil)

// New requires an API key; without one it returns *upstream.CredentialError.
func New(s upstream.Settings) (*Client, error) {
	key := strings.TrimSpace(s.APIKey)
	if key == "" {
		return nil, upstream.NewCredentialError(upstream.KindOpenAI)
	}
	cfg := goopenai.DefaultConfig(key)
	if s.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(s.BaseURL, "/")
	}
	if s.HTTPClient != nil {
		cfg.HTTPClient = s.HTTPClient
	}
	model := s.Model
	if model == "" {
		model = constants.DefaultOpenAIModel
	}
	return &Client{api: goopenai.NewClientWithConfig(cfg), model: model, baseURL: cfg.BaseURL}, nil
}

func (c *Client) Kind() upstream.Kind { return upstream.KindOpenAI }

func (c *Client) Model() string { return c.model }

// Translate sends prompt as the only user message under the translator
// system instruction and returns the first choice verbatim.
func (c *Client) Translate(ctx context.Context, prompt string) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "upstream/openai", "OpenAI.Translate",
		trace.WithAttributes(
			attribute.String("upstream.model", c.model),
			attribute.String("upstream.base_url", c.baseURL),
		))
	defer span.End()

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: constants.TranslationSystemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: constants.TranslationTemperature,
		MaxTokens:   constants.TranslationMaxTokens,
	})
	dur := time.Since(start)

	if err != nil {
		apiErr := mapError(err)
		networkErr := apiErr.HTTPStatus == 0 || !isHTTPError(err)
		mw.RecordUpstream("openai", dur, apiErr.HTTPStatus, networkErr)
		mw.RecordUpstreamModel("openai", c.model, apiErr.HTTPStatus, networkErr)
		mw.RecordUpstreamError("openai", logging.ErrorKind(apiErr))
		tracing.Fail(span, apiErr, apiErr.Message)
		span.SetAttributes(attribute.Int("http.status_code", apiErr.HTTPStatus))
		return "", upstream.Wrap(upstream.KindOpenAI, apiErr)
	}

	mw.RecordUpstream("openai", dur, 200, false)
	mw.RecordUpstreamModel("openai", c.model, 200, false)
	span.SetAttributes(
		attribute.Int("http.status_code", 200),
		attribute.Int("upstream.completion_tokens", resp.Usage.CompletionTokens),
	)

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		tracing.Fail(span, nil, "empty completion")
		mw.RecordUpstreamError("openai", "empty_completion")
		return "", upstream.Wrap(upstream.KindOpenAI, upstream.NoTranslation(upstream.KindOpenAI))
	}
	tracing.Succeed(span)
	return resp.Choices[0].Message.Content, nil
}

func isHTTPError(err error) bool {
	var apiErr *goopenai.APIError
	var reqErr *goopenai.RequestError
	return errors.As(err, &apiErr) || (errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0)
}

// mapError converts go-openai failures into the normalized APIError so the
// SDK's own types never leave this package.
func mapError(err error) *apperrors.APIError {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		mapped := apperrors.MapHTTPError(apiErr.HTTPStatusCode, nil)
		if apiErr.Message != "" {
			mapped.Message = apiErr.Message
		}
		if code, ok := apiErr.Code.(string); ok && code != "" {
			mapped.Code = code
		}
		return mapped
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		mapped := apperrors.MapHTTPError(reqErr.HTTPStatusCode, nil)
		if reqErr.Err != nil {
			mapped.Message = reqErr.Err.Error()
		}
		return mapped
	}
	return apperrors.MapNetworkError(err)
}
