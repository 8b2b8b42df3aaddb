package prompts

import (
	"fmt"
	"strings"
)

// Tone is one of the three English registers produced for every request.
type Tone string

const (
	Formal Tone = "formal"
	Casual Tone = "casual"
	Normal Tone = "normal"
)

var allTones = [...]Tone{Formal, Casual, Normal}

// Tones returns the tones in canonical order.
func Tones() []Tone {
	out := make([]Tone, len(allTones))
	copy(out, allTones[:])
	return out
}

func (t Tone) String() string { return string(t) }

// Valid reports whether t is a known tone.
func (t Tone) Valid() bool {
	for _, known := range allTones {
		if t == known {
			return true
		}
	}
	return false
}

// ParseTone accepts a tone name case-insensitively.
func ParseTone(raw string) (Tone, error) {
	t := Tone(strings.ToLower(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown tone %q", raw)
	}
	return t, nil
}
