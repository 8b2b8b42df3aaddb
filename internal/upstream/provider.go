package upstream

import (
	"context"
	"strings"
)

// Kind identifies a vendor. The set is closed.
type Kind string

const (
	KindOpenAI Kind = "openai"
	KindClaude Kind = "claude"
)

// Kinds returns every supported kind in display order.
func Kinds() []Kind { return []Kind{KindOpenAI, KindClaude} }

// ParseKind maps a request's provider field to a Kind. Matching is exact.
func ParseKind(raw string) (Kind, bool) {
	switch Kind(raw) {
	case KindOpenAI:
		return KindOpenAI, true
	case KindClaude:
		return KindClaude, true
	}
	return "", false
}

func (k Kind) String() string { return string(k) }

// Label is the vendor product name used in user-facing messages.
func (k Kind) Label() string {
	switch k {
	case KindOpenAI:
		return "OpenAI"
	case KindClaude:
		return "Claude"
	}
	return strings.ToUpper(string(k))
}

// Vendor is the company issuing the credential.
func (k Kind) Vendor() string {
	switch k {
	case KindOpenAI:
		return "OpenAI"
	case KindClaude:
		return "Anthropic"
	}
	return k.Label()
}

// Provider 是一个上游翻译调用器：一个 prompt 进，一段译文出。
type Provider interface {
	// Kind 返回 provider 类型。
	Kind() Kind
	// Model 返回实际请求使用的模型名。
	Model() string
	// Translate 发送一次 chat completion，返回第一段文本。
	// 失败时总是返回 *TranslationError。
	Translate(ctx context.Context, prompt string) (string, error)
}
