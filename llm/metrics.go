package llm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatcher metrics. Observability only: the retry loops never read them.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agentless_llm_requests_total",
		Help: "Completion requests by provider and outcome.",
	}, []string{"provider", "outcome"})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agentless_llm_retries_total",
		Help: "Retried request attempts by provider and reason.",
	}, []string{"provider", "reason"})

	cooldownWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "agentless_llm_cooldown_wait_seconds",
		Help:    "Time spent waiting on the OpenAI cooldown gate.",
		Buckets: prometheus.DefBuckets,
	})
)
