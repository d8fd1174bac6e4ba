package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	messagesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_bot_messages_received_total",
		Help: "Total number of messages received",
	}, []string{"kind"})

	messagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_bot_messages_processed_total",
		Help: "Total number of messages processed",
	}, []string{"status"})

	commandsExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_bot_commands_executed_total",
		Help: "Total number of commands executed",
	}, []string{"command"})

	answerRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "relay_bot_answer_request_duration_seconds",
		Help:    "Duration of Q&A API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})

	answerRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_bot_answer_requests_total",
		Help: "Total number of Q&A API requests",
	}, []string{"status"})

	translationRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_bot_translation_requests_total",
		Help: "Total number of translation requests",
	}, []string{"target", "status"})

	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_bot_cache_hits_total",
		Help: "Total number of answer cache hits",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_bot_cache_misses_total",
		Help: "Total number of answer cache misses",
	})

	rateLimitExceeded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_bot_rate_limit_exceeded_total",
		Help: "Total number of rate limit exceeded events",
	})

	preferenceSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_bot_preference_saves_total",
		Help: "Total number of language preference upserts",
	}, []string{"language"})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_bot_active_sessions",
		Help: "Number of live user sessions",
	})
)

// Metrics provides methods to record metrics
type Metrics struct{}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordMessageReceived records a received update ("command" or "text")
func (m *Metrics) RecordMessageReceived(kind string) {
	messagesReceived.WithLabelValues(kind).Inc()
}

// RecordMessageProcessed records a processed message
func (m *Metrics) RecordMessageProcessed(status string) {
	messagesProcessed.WithLabelValues(status).Inc()
}

// RecordCommandExecuted records an executed command
func (m *Metrics) RecordCommandExecuted(command string) {
	commandsExecuted.WithLabelValues(command).Inc()
}

// RecordAnswerRequest records a Q&A API request
func (m *Metrics) RecordAnswerRequest(status string, duration time.Duration) {
	answerRequestDuration.WithLabelValues(status).Observe(duration.Seconds())
	answerRequestsTotal.WithLabelValues(status).Inc()
}

// RecordTranslationRequest records a translation request
func (m *Metrics) RecordTranslationRequest(target, status string) {
	translationRequestsTotal.WithLabelValues(target, status).Inc()
}

// RecordCacheHit records an answer cache hit
func (m *Metrics) RecordCacheHit() {
	cacheHits.Inc()
}

// RecordCacheMiss records an answer cache miss
func (m *Metrics) RecordCacheMiss() {
	cacheMisses.Inc()
}

// RecordRateLimitExceeded records a rate limit exceeded event
func (m *Metrics) RecordRateLimitExceeded() {
	rateLimitExceeded.Inc()
}

// RecordPreferenceSave records a language preference upsert
func (m *Metrics) RecordPreferenceSave(language string) {
	preferenceSaves.WithLabelValues(language).Inc()
}

// SetActiveSessions sets the live session count
func (m *Metrics) SetActiveSessions(count float64) {
	activeSessions.Set(count)
}

// StartMetricsServer starts the metrics HTTP server
func StartMetricsServer(port int, path string) error {
	router := mux.NewRouter()
	router.Handle(path, promhttp.Handler())

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	addr := fmt.Sprintf(":%d", port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}
