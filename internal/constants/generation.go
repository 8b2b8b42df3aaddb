package constants

// 翻译请求的生成参数，两个上游保持一致。
const (
	// TranslationSystemPrompt is sent as the system instruction on every vendor call.
	TranslationSystemPrompt = "You are a professional translator. Provide only the translation without any explanations."
	// TranslationTemperature keeps the output close to deterministic.
	TranslationTemperature = 0.3
	// TranslationMaxTokens caps the completion length.
	TranslationMaxTokens = 1000

	DefaultOpenAIModel    = "gpt-4-turbo-preview"
	DefaultAnthropicModel = "claude-3-sonnet-20240229"

	DefaultOpenAIBaseURL    = "https://api.openai.com/v1"
	DefaultAnthropicBaseURL = "https://api.anthropic.com"
	// AnthropicAPIVersion is the anthropic-version header value.
	AnthropicAPIVersion = "2023-06-01"
)
