package events

import "time"

// TranslationCompleted is published once per handled translate request,
// live or demo. Text content is never included.
type TranslationCompleted struct {
	RequestID string            `json:"request_id,omitempty"`
	Provider  string            `json:"provider"`
	Model     string            `json:"model,omitempty"`
	Demo      bool              `json:"demo"`
	Outcomes  map[string]bool   `json:"outcomes,omitempty"` // tone -> succeeded
	Errors    map[string]string `json:"errors,omitempty"`
	Duration  time.Duration     `json:"duration"`
}

// Failed counts tones whose translation did not succeed.
func (t TranslationCompleted) Failed() int {
	n := 0
	for _, ok := range t.Outcomes {
		if !ok {
			n++
		}
	}
	return n
}
