package translator

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"tonetranslate-go/internal/logging"
	mw "tonetranslate-go/internal/middleware"
	"tonetranslate-go/internal/monitoring/tracing"
	"tonetranslate-go/internal/prompts"
	"tonetranslate-go/internal/upstream"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Orchestrator fans one text out to every tone through a single provider.
type Orchestrator struct {
	provider upstream.Provider
	store    *prompts.Store
	opts     Options
	sleep    func(context.Context, time.Duration) error
}

// New builds an orchestrator. A nil store means the built-in templates.
func New(provider upstream.Provider, store *prompts.Store, opts Options) *Orchestrator {
	if store == nil {
		store = prompts.Default()
	}
	return &Orchestrator{provider: provider, store: store, opts: opts, sleep: sleepCtx}
}

// TranslateWithTones runs all tones concurrently and waits for every one to
// settle. A failing, timed out or panicking tone is reported in its own
// Outcome and never affects the others.
func (o *Orchestrator) TranslateWithTones(ctx context.Context, text string) Result {
	tones := prompts.Tones()
	ctx, span := tracing.StartSpan(ctx, "translator", "Orchestrator.TranslateWithTones",
		trace.WithAttributes(
			attribute.String("upstream.provider", string(o.provider.Kind())),
			attribute.String("upstream.model", o.provider.Model()),
			attribute.Int("translation.input_chars", len([]rune(text))),
		))
	defer span.End()

	outcomes := make([]Outcome, len(tones))
	var g errgroup.Group
	for i, tone := range tones {
		i, tone := i, tone
		g.Go(func() error {
			outcomes[i] = o.runTone(ctx, tone, text)
			return nil
		})
	}
	_ = g.Wait()

	res := Result{
		Provider: o.provider.Kind(),
		Model:    o.provider.Model(),
		Outcomes: make(map[prompts.Tone]Outcome, len(tones)),
	}
	for i, tone := range tones {
		res.Outcomes[tone] = outcomes[i]
	}
	span.SetAttributes(attribute.Int("translation.failed_tones", res.Failed()))
	return res
}

func (o *Orchestrator) runTone(ctx context.Context, tone prompts.Tone, text string) (out Outcome) {
	kind := o.provider.Kind()
	entry := logging.WithTone(string(kind), o.provider.Model(), string(tone))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			entry.WithFields(log.Fields{"panic": r, "stack": string(debug.Stack())}).Error("tone translation panicked")
			out.Text = ""
			out.Err = upstream.Wrap(kind, fmt.Errorf("panic: %v", r))
		}
		out.Duration = time.Since(start)
		mw.RecordToneOutcome(string(kind), string(tone), out.OK())
	}()

	prompt, err := o.store.Render(tone, text)
	if err != nil {
		return Outcome{Err: upstream.Wrap(kind, err)}
	}

	for attempt := 0; ; attempt++ {
		out.Attempts = attempt + 1
		translated, err := o.call(ctx, prompt)
		if err == nil {
			out.Text, out.Err = translated, nil
			mw.RecordUpstreamRetry(string(kind), attempt, true)
			return out
		}
		out.Err = upstream.Wrap(kind, err)

		if attempt >= o.opts.Retry.Max || !upstream.IsRetryable(err) || ctx.Err() != nil {
			mw.RecordUpstreamRetry(string(kind), attempt, false)
			level := log.WarnLevel
			if upstream.IsCritical(err) {
				level = log.ErrorLevel
			}
			entry.WithFields(log.Fields{
				"attempts":   out.Attempts,
				"error_kind": logging.ErrorKind(err),
			}).WithError(err).Log(level, "tone translation failed")
			return out
		}

		wait := o.opts.Retry.delay(attempt, err)
		entry.WithFields(log.Fields{"attempt": out.Attempts, "backoff_ms": logging.DurationMS(wait)}).
			WithError(err).Debug("retrying tone translation")
		if err := o.sleep(ctx, wait); err != nil {
			mw.RecordUpstreamRetry(string(kind), attempt, false)
			return out
		}
	}
}

func (o *Orchestrator) call(ctx context.Context, prompt string) (string, error) {
	if o.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.CallTimeout)
		defer cancel()
	}
	return o.provider.Translate(ctx, prompt)
}
