package prompts

import (
	"fmt"
	"strings"
)

// Placeholder marks where the source text goes in a template.
const Placeholder = "{text}"

const (
	formalTemplate = "あなたは専門的な翻訳者です。以下の日本語を、ビジネス文書や学術論文に適した格式高い英語に翻訳してください。\n" +
		"敬語や丁寧語はformalな表現に、専門用語は適切な英語表現に変換してください。\n\n" +
		"日本語: {text}\n\n英語:"

	casualTemplate = "あなたはフレンドリーな翻訳者です。以下の日本語を、友人同士の会話や親しみやすいコミュニケーションに適した英語に翻訳してください。\n" +
		"カジュアルで親近感のある表現を使用してください。\n\n" +
		"日本語: {text}\n\n英語:"

	normalTemplate = "以下の日本語を、自然で標準的な英語に翻訳してください。\n" +
		"フォーマルすぎず、カジュアルすぎない、バランスの取れた表現を使用してください。\n\n" +
		"日本語: {text}\n\n英語:"
)

// Format substitutes text for every Placeholder. The replacement is literal:
// "$1", backslashes and regex metacharacters in text are copied verbatim.
func Format(template, text string) string {
	return strings.ReplaceAll(template, Placeholder, text)
}

// Store holds one validated template per tone. It is immutable once built.
type Store struct {
	templates map[Tone]string
}

// NewStore validates that every tone has a template containing Placeholder.
func NewStore(templates map[Tone]string) (*Store, error) {
	s := &Store{templates: make(map[Tone]string, len(allTones))}
	for _, tone := range allTones {
		tpl, ok := templates[tone]
		if !ok || strings.TrimSpace(tpl) == "" {
			return nil, fmt.Errorf("prompt template for tone %q is missing", tone)
		}
		if !strings.Contains(tpl, Placeholder) {
			return nil, fmt.Errorf("prompt template for tone %q does not contain %s", tone, Placeholder)
		}
		s.templates[tone] = tpl
	}
	for tone := range templates {
		if !tone.Valid() {
			return nil, fmt.Errorf("prompt template given for unknown tone %q", tone)
		}
	}
	return s, nil
}

// Builtin returns a fresh copy of the built-in Japanese to English templates.
func Builtin() map[Tone]string {
	return map[Tone]string{
		Formal: formalTemplate,
		Casual: casualTemplate,
		Normal: normalTemplate,
	}
}

var defaultStore = mustStore(Builtin())

func mustStore(templates map[Tone]string) *Store {
	s, err := NewStore(templates)
	if err != nil {
		panic(err)
	}
	return s
}

// Default returns the store backed by the built-in templates.
func Default() *Store { return defaultStore }

// WithOverrides returns a store whose templates are the built-ins with any
// non-empty override applied. Overrides are validated like NewStore.
func WithOverrides(overrides map[Tone]string) (*Store, error) {
	merged := Builtin()
	for tone, tpl := range overrides {
		if strings.TrimSpace(tpl) == "" {
			continue
		}
		merged[tone] = tpl
	}
	return NewStore(merged)
}

// Template returns the raw template for tone.
func (s *Store) Template(tone Tone) (string, bool) {
	tpl, ok := s.templates[tone]
	return tpl, ok
}

// Render formats tone's template with text.
func (s *Store) Render(tone Tone, text string) (string, error) {
	tpl, ok := s.templates[tone]
	if !ok {
		return "", fmt.Errorf("unknown tone %q", tone)
	}
	return Format(tpl, text), nil
}
