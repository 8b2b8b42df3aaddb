package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tonetranslate_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_class"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tonetranslate_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "path", "status_class"},
	)

	// HTTP 并发请求数
	HTTPInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tonetranslate_http_inflight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// 上游API调用指标
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tonetranslate_upstream_requests_total",
			Help: "Total number of upstream API requests",
		},
		[]string{"provider", "status_class"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tonetranslate_upstream_request_duration_seconds",
			Help:    "Upstream API request latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"provider"},
	)

	UpstreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tonetranslate_upstream_errors_total",
			Help: "Total number of upstream errors by reason",
		},
		[]string{"provider", "reason"},
	)

	UpstreamRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tonetranslate_upstream_retry_attempts_total",
			Help: "Total number of upstream retry attempts",
		},
		[]string{"provider", "outcome"},
	)

	UpstreamModelRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tonetranslate_upstream_model_requests_total",
			Help: "Total number of upstream requests by model",
		},
		[]string{"provider", "model", "status_class"},
	)

	// 语气维度
	ToneOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tonetranslate_tone_outcomes_total",
			Help: "Per-tone translation outcomes",
		},
		[]string{"provider", "tone", "outcome"},
	)

	DemoResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tonetranslate_demo_responses_total",
			Help: "Requests answered with canned demo translations",
		},
		[]string{"reason"}, // reason: no_keys, provider_missing
	)

	RateLimitKeysGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tonetranslate_ratelimit_keys",
			Help: "Current number of per-key rate limiters",
		},
	)

	RateLimitSweepsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tonetranslate_ratelimit_sweeps_total",
			Help: "Total number of rate limiter TTL cache sweeps",
		},
	)

	RateLimitRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tonetranslate_ratelimit_rejections_total",
			Help: "Requests rejected with 429",
		},
	)

	// 用量持久化
	UsageFlushesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tonetranslate_usage_flushes_total",
			Help: "Usage tracker flushes by backend and result",
		},
		[]string{"backend", "result"},
	)

	ConfigReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tonetranslate_config_reloads_total",
			Help: "Configuration reload attempts",
		},
		[]string{"result"},
	)

	ProvidersConfigured = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tonetranslate_provider_configured",
			Help: "1 when the provider credential is present",
		},
		[]string{"provider"},
	)
)
