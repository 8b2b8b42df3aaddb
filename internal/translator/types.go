package translator

import (
	"time"

	"tonetranslate-go/internal/config"
	"tonetranslate-go/internal/prompts"
	"tonetranslate-go/internal/upstream"
)

// Outcome is the settled state of one tone: exactly one of Text or Err is meaningful.
type Outcome struct {
	Text     string
	Err      error
	Attempts int
	Duration time.Duration
}

// OK reports whether the tone produced a translation.
func (o Outcome) OK() bool { return o.Err == nil }

// Result always carries an Outcome for every tone.
type Result struct {
	Provider upstream.Kind
	Model    string
	Outcomes map[prompts.Tone]Outcome
}

// Get returns the outcome for tone.
func (r Result) Get(tone prompts.Tone) Outcome { return r.Outcomes[tone] }

// Failed counts tones that ended in error.
func (r Result) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if !o.OK() {
			n++
		}
	}
	return n
}

// Strings flattens the result to tone -> text, using render for failures.
func (r Result) Strings(render func(error) string) map[string]string {
	out := make(map[string]string, len(r.Outcomes))
	for tone, o := range r.Outcomes {
		if o.OK() {
			out[string(tone)] = o.Text
			continue
		}
		out[string(tone)] = render(o.Err)
	}
	return out
}

// RetryPolicy controls re-issuing a tone after a retryable vendor failure.
// Max is the number of extra attempts; zero means one attempt only.
type RetryPolicy struct {
	Max         int
	Interval    time.Duration
	MaxInterval time.Duration
}

// Options tune an Orchestrator.
type Options struct {
	// CallTimeout bounds each vendor attempt; zero leaves only the caller's deadline.
	CallTimeout time.Duration
	Retry       RetryPolicy
}

// OptionsFromConfig maps the translation and retry sections.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return Options{}
	}
	opts := Options{CallTimeout: cfg.Translation.CallTimeout()}
	if cfg.Retry.Enabled {
		opts.Retry = RetryPolicy{
			Max:         cfg.Retry.Max,
			Interval:    time.Duration(cfg.Retry.IntervalMs) * time.Millisecond,
			MaxInterval: time.Duration(cfg.Retry.MaxIntervalMs) * time.Millisecond,
		}
	}
	return opts
}
