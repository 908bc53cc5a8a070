package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	WorkflowRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auraflow_workflow_runs_total",
			Help: "Total number of workflow executions",
		},
		[]string{"status"},
	)
	WorkflowRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "auraflow_workflow_run_duration_seconds",
			Help:    "Duration of workflow executions",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)
	LLMCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auraflow_llm_calls_total",
			Help: "Total number of language model calls",
		},
		[]string{"backend", "outcome"},
	)
	EmbeddingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auraflow_embeddings_total",
			Help: "Total number of embedding requests",
		},
		[]string{"provider", "status"},
	)
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auraflow_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "auraflow_http_request_duration_seconds",
			Help: "Duration of HTTP requests",
		},
		[]string{"route"},
	)
)

func init() {
	prometheus.MustRegister(WorkflowRunsTotal)
	prometheus.MustRegister(WorkflowRunDuration)
	prometheus.MustRegister(LLMCallsTotal)
	prometheus.MustRegister(EmbeddingsTotal)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
}
