// Package demo produces the canned translations served when no vendor
// credential is available.
package demo

import (
	"context"
	"strings"
	"time"

	"tonetranslate-go/internal/prompts"
)

const inputMarker = "${inputText}"

// Response messages for the two demo situations.
const (
	MessageNoKeys = "Demo mode: Using sample translations (API keys not configured)"
)

// MessageProviderMissing is used when keys exist but not for the requested provider.
func MessageProviderMissing(provider string) string {
	return "Demo mode: API key for " + provider + " not configured"
}

var samples = map[prompts.Tone]string{
	prompts.Formal: `I would like to respectfully request your kind assistance with the following matter: "${inputText}". This is a professional translation demonstrating formal tone in English.`,
	prompts.Casual: `Hey! So you want me to translate "${inputText}"? Here's a casual, friendly version for you! This is super relaxed and conversational.`,
	prompts.Normal: `Could you please help translate "${inputText}"? This is a standard, balanced translation that's neither too formal nor too casual.`,
}

// Translations returns the sample sentence for every tone with text embedded verbatim.
func Translations(text string) map[string]string {
	out := make(map[string]string, len(samples))
	for _, tone := range prompts.Tones() {
		out[string(tone)] = strings.ReplaceAll(samples[tone], inputMarker, text)
	}
	return out
}

// Wait simulates vendor latency. It returns early with ctx's error.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
