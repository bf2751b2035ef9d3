package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "winposts"

	LabelKind   = "kind"
	LabelResult = "result"
	LabelLang   = "lang"
	LabelSource = "source"
)

// Bot metrics
var (
	UpdatesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_processed_total",
			Help:      "Telegram updates processed, by kind.",
		},
		[]string{LabelKind},
	)

	HandlerPanics = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_panics_total",
			Help:      "Panics recovered in the update loop.",
		},
	)

	RecordsQueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_queued_total",
			Help:      "Win records queued for generation, by source.",
		},
		[]string{LabelSource},
	)
)

// Generation metrics
var (
	PostsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_generated_total",
			Help:      "Generation results, by language and result.",
		},
		[]string{LabelLang, LabelResult},
	)

	CompletionAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_attempts_total",
			Help:      "Chat completion requests sent, retries included.",
		},
	)

	CompletionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_duration_seconds",
			Help:      "Latency of a single chat completion request.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		},
	)

	PostsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_published_total",
			Help:      "Drafts sent to the channel, by result.",
		},
		[]string{LabelResult},
	)
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)
