package translate

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"tonetranslate-go/internal/demo"
	apperrors "tonetranslate-go/internal/errors"
	"tonetranslate-go/internal/events"
	hcommon "tonetranslate-go/internal/handlers/common"
	"tonetranslate-go/internal/logging"
	mw "tonetranslate-go/internal/middleware"
	"tonetranslate-go/internal/translator"
	"tonetranslate-go/internal/upstream"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Client-facing messages.
const (
	msgInvalidBody     = "Invalid request body"
	msgTextRequired    = "Text is required"
	msgInvalidProvider = `Invalid provider. Use "openai" or "claude"`
	msgFailed          = "Translation failed"

	// placeholderPrefix marks a tone whose vendor call failed.
	placeholderPrefix = "Translation error: "

	// statusClientClosed: the caller went away during the demo delay.
	statusClientClosed = 499
)

type translateResponse struct {
	Success      bool              `json:"success"`
	Translations map[string]string `json:"translations"`
	Demo         bool              `json:"demo,omitempty"`
	Message      string            `json:"message,omitempty"`
}

// Translate handles POST /api/translate.
func (h *Handler) Translate(c *gin.Context) {
	start := time.Now()

	body, verr := hcommon.ReadJSONObject(c, msgInvalidBody)
	if verr != nil {
		hcommon.AbortWithAPIError(c, verr.APIError())
		return
	}
	text, ok := textField(body)
	if !ok {
		hcommon.BadRequest(c, msgTextRequired)
		return
	}
	kind, ok := providerField(body)
	if !ok {
		hcommon.BadRequest(c, msgInvalidProvider)
		return
	}
	c.Set("provider", string(kind))

	cfg := h.cm.Current()
	if !cfg.Providers.AnyConfigured() {
		if err := demo.Wait(c.Request.Context(), cfg.Translation.DemoDelay()); err != nil {
			logging.WithReq(c, nil).WithError(err).Debug("client went away during demo delay")
			c.AbortWithStatus(statusClientClosed)
			return
		}
		h.respondDemo(c, kind, text, "no_keys", demo.MessageNoKeys, start)
		return
	}

	rt := h.runtime()
	provider, err := h.factory(kind, cfg, rt.client)
	if err != nil {
		var credErr *upstream.CredentialError
		if errors.As(err, &credErr) {
			logging.WithReq(c, log.Fields{"provider": kind}).Info("selected provider has no credential, serving demo")
			h.respondDemo(c, kind, text, "provider_missing", demo.MessageProviderMissing(string(kind)), start)
			return
		}
		h.fail(c, err)
		return
	}

	orch := translator.New(provider, rt.store, translator.OptionsFromConfig(cfg))
	result, err := mw.SafeCallWithValue(func() (translator.Result, error) {
		return orch.TranslateWithTones(c.Request.Context(), text), nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Set("demo", false)
	h.publish(c, liveEvent(c, result, time.Since(start)))
	logging.WithReq(c, log.Fields{
		"provider":     result.Provider,
		"model":        result.Model,
		"failed_tones": result.Failed(),
		"duration_ms":  logging.DurationMS(time.Since(start)),
	}).Info("translation completed")

	c.JSON(http.StatusOK, translateResponse{
		Success:      true,
		Translations: result.Strings(renderFailure),
	})
}

func (h *Handler) respondDemo(c *gin.Context, kind upstream.Kind, text, demoReason, message string, start time.Time) {
	c.Set("demo", true)
	mw.RecordDemoResponse(demoReason)
	h.publish(c, events.TranslationCompleted{
		RequestID: mw.GetRequestID(c),
		Provider:  string(kind),
		Demo:      true,
		Duration:  time.Since(start),
	})
	c.JSON(http.StatusOK, translateResponse{
		Success:      true,
		Translations: demo.Translations(text),
		Demo:         true,
		Message:      message,
	})
}

func (h *Handler) fail(c *gin.Context, err error) {
	logging.WithReq(c, log.Fields{"error_kind": logging.ErrorKind(err)}).WithError(err).Error("translation request failed")
	hcommon.AbortWithAPIError(c, apperrors.New(http.StatusInternalServerError, "translation_failed", "server_error", msgFailed).
		WithDetails(err.Error()))
}

func (h *Handler) publish(c *gin.Context, evt events.TranslationCompleted) {
	if h.publisher == nil {
		return
	}
	h.publisher.Publish(c.Request.Context(), events.TopicTranslationCompleted, evt, map[string]string{
		"request_id": mw.GetRequestID(c),
	})
}

func liveEvent(c *gin.Context, result translator.Result, d time.Duration) events.TranslationCompleted {
	evt := events.TranslationCompleted{
		RequestID: mw.GetRequestID(c),
		Provider:  string(result.Provider),
		Model:     result.Model,
		Outcomes:  make(map[string]bool, len(result.Outcomes)),
		Duration:  d,
	}
	for tone, o := range result.Outcomes {
		evt.Outcomes[string(tone)] = o.OK()
		if !o.OK() {
			if evt.Errors == nil {
				evt.Errors = make(map[string]string)
			}
			evt.Errors[string(tone)] = reason(o.Err)
		}
	}
	return evt
}

// renderFailure is the per-tone placeholder shown in place of a translation.
func renderFailure(err error) string {
	return placeholderPrefix + reason(err)
}

func reason(err error) string {
	var te *upstream.TranslationError
	if errors.As(err, &te) {
		return te.Reason()
	}
	return strings.TrimPrefix(err.Error(), upstream.TranslationFailedPrefix)
}

// textField extracts a non-blank string "text". The original string is kept;
// trimming only decides emptiness.
func textField(body map[string]json.RawMessage) (string, bool) {
	raw, ok := body["text"]
	if !ok {
		return "", false
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", false
	}
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}

// providerField defaults to openai when absent. null (decodes to ""),
// non-strings and unknown names are rejected.
func providerField(body map[string]json.RawMessage) (upstream.Kind, bool) {
	raw, ok := body["provider"]
	if !ok {
		return upstream.KindOpenAI, true
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return "", false
	}
	return upstream.ParseKind(name)
}
