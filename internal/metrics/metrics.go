package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	ResearchTotal    *prometheus.CounterVec
	ResearchDuration *prometheus.HistogramVec
	ResearchInFlight prometheus.Gauge
	ReportSources    *prometheus.HistogramVec

	LLMRequestsTotal   *prometheus.CounterVec
	LLMRequestDuration *prometheus.HistogramVec

	SearchRequestsTotal   *prometheus.CounterVec
	SearchRequestDuration *prometheus.HistogramVec
	SearchResultsDropped  prometheus.Counter

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	MessagesTotal *prometheus.CounterVec
}

// New регистрирует метрики в reg. nil - глобальный registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		ResearchTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "research_bot_research_total",
				Help: "Total number of research runs",
			},
			[]string{"mode", "status"},
		),
		ResearchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "research_bot_research_duration_seconds",
				Help:    "Research run duration in seconds",
				Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120, 180},
			},
			[]string{"mode"},
		),
		ResearchInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "research_bot_research_in_flight",
				Help: "Number of research runs currently being processed",
			},
		),
		ReportSources: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "research_bot_report_sources",
				Help:    "Number of sources cited per report",
				Buckets: []float64{0, 1, 3, 5, 8, 10, 15, 20},
			},
			[]string{"mode"},
		),

		LLMRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "research_bot_llm_requests_total",
				Help: "Total number of LLM API requests",
			},
			[]string{"provider", "status"},
		),
		LLMRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "research_bot_llm_request_duration_seconds",
				Help:    "LLM request duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"provider"},
		),

		SearchRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "research_bot_search_requests_total",
				Help: "Total number of search API requests",
			},
			[]string{"provider", "status"},
		),
		SearchRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "research_bot_search_request_duration_seconds",
				Help:    "Search request duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"provider"},
		),
		SearchResultsDropped: f.NewCounter(
			prometheus.CounterOpts{
				Name: "research_bot_search_results_dropped_total",
				Help: "Search hits dropped because they carried no text",
			},
		),

		CacheHitsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "research_bot_cache_hits_total",
				Help: "Total number of search cache hits",
			},
		),
		CacheMissesTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "research_bot_cache_misses_total",
				Help: "Total number of search cache misses",
			},
		),

		MessagesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "research_bot_messages_total",
				Help: "Chat messages handled, by type and status",
			},
			[]string{"type", "status"},
		),
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor - хендлер для конкретного registry (нужен когда метрики не в глобальном)
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordResearch(mode, status string, duration time.Duration) {
	m.ResearchTotal.WithLabelValues(mode, status).Inc()
	m.ResearchDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

func (m *Metrics) RecordReportSources(mode string, n int) {
	m.ReportSources.WithLabelValues(mode).Observe(float64(n))
}

func (m *Metrics) RecordLLMRequest(provider, status string, duration time.Duration) {
	m.LLMRequestsTotal.WithLabelValues(provider, status).Inc()
	m.LLMRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

func (m *Metrics) RecordSearchRequest(provider, status string, duration time.Duration) {
	m.SearchRequestsTotal.WithLabelValues(provider, status).Inc()
	m.SearchRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

func (m *Metrics) RecordDroppedResults(n int) {
	m.SearchResultsDropped.Add(float64(n))
}

func (m *Metrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}

func (m *Metrics) RecordMessage(msgType, status string) {
	m.MessagesTotal.WithLabelValues(msgType, status).Inc()
}

func (m *Metrics) IncResearchInFlight() {
	m.ResearchInFlight.Inc()
}

func (m *Metrics) DecResearchInFlight() {
	m.ResearchInFlight.Dec()
}
