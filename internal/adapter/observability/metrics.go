package observability

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	ReportGenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_generations_total",
			Help: "Total number of report regenerations by trigger and outcome",
		},
		[]string{"trigger", "outcome"},
	)
	ReportGenerationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "report_generation_duration_seconds",
			Help:    "Full aggregation run duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)
	ReportCandidates = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "report_candidates",
			Help: "Number of candidates in the most recently generated report",
		},
	)

	SourceSessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_sessions_total",
			Help: "Total sessions fetched per backing store",
		},
		[]string{"source"},
	)
	SourceFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_failures_total",
			Help: "Total failed extraction attempts per backing store",
		},
		[]string{"source"},
	)

	CachePersistFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "report_cache_persist_failures_total",
			Help: "Total failed report cache writes (swallowed, result still served)",
		},
	)
)

func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(ReportGenerationsTotal)
	prometheus.MustRegister(ReportGenerationDuration)
	prometheus.MustRegister(ReportCandidates)
	prometheus.MustRegister(SourceSessionsTotal)
	prometheus.MustRegister(SourceFailuresTotal)
	prometheus.MustRegister(CachePersistFailuresTotal)
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		method := r.Method
		status := ww.Status()
		HTTPRequestsTotal.WithLabelValues(route, method, http.StatusText(status)).Inc()
		HTTPRequestDuration.WithLabelValues(route, method).Observe(dur)
	})
}

// RecordGeneration tracks one aggregation run.
func RecordGeneration(trigger, outcome string, dur time.Duration, candidates int) {
	ReportGenerationsTotal.WithLabelValues(trigger, outcome).Inc()
	ReportGenerationDuration.Observe(dur.Seconds())
	if outcome == "ok" {
		ReportCandidates.Set(float64(candidates))
	}
}
