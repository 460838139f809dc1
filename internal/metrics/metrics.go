package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	MessagesProcessedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "guildmate_messages_processed_total",
			Help: "Total number of inbound messages taken off the queue.",
		},
	)

	RunFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "guildmate_run_failures_total",
			Help: "Total number of processing runs aborted by a failure.",
		},
	)

	CompletionCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guildmate_completion_calls_total",
			Help: "Total number of completion-service calls.",
		},
		[]string{"kind", "status"},
	)

	ToolExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guildmate_tool_executions_total",
			Help: "Total number of tool executions.",
		},
		[]string{"tool", "status"},
	)

	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guildmate_searches_total",
			Help: "Total number of web search calls.",
		},
		[]string{"status"},
	)

	SummariesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guildmate_summaries_total",
			Help: "Total number of summary sub-flows by outcome.",
		},
		[]string{"outcome"},
	)

	QueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "guildmate_queue_depth",
			Help: "Number of messages waiting in the processing queue.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		MessagesProcessedTotal,
		RunFailuresTotal,
		CompletionCallsTotal,
		ToolExecutionsTotal,
		SearchesTotal,
		SummariesTotal,
		QueueDepth,
	)
}
