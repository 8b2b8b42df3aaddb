package constants

import "time"

// 重试策略常量（仅编排层使用，适配器内部不重试）
const (
	DefaultMaxRetries    = 2
	DefaultRetryInterval = 1 * time.Second
	DefaultMaxRetryDelay = 8 * time.Second
	RetryBackoffFactor   = 2.0
)

// 错误处理配置
const (
	MaxErrorMessageLength = 200
)
