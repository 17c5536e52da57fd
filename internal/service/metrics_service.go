package service

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the SOL engine.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	calculationTotal *prometheus.CounterVec
	batchRunTotal    *prometheus.CounterVec
	batchDuration    prometheus.Histogram
	batchLoans       prometheus.Gauge
	alertCount       prometheus.Gauge
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
}

// NewMetricsService registers the engine's Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	calculationTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sol_calculations_total",
		Help: "SOL calculations grouped by outcome",
	}, []string{"result"})

	batchRunTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sol_batch_runs_total",
		Help: "Daily update runs grouped by status",
	}, []string{"status"})

	batchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sol_batch_duration_seconds",
		Help:    "Duration of daily update runs",
		Buckets: []float64{1, 5, 15, 60, 300, 900, 3600},
	})

	batchLoans := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sol_batch_loans_updated",
		Help: "Loans updated by the most recent daily run",
	})

	alertCount := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sol_expiration_alerts",
		Help: "Expiration alerts produced by the most recent alert pass",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sol_jurisdiction_cache_hits_total",
		Help: "Jurisdiction rule cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sol_jurisdiction_cache_misses_total",
		Help: "Jurisdiction rule cache misses",
	})

	registry.MustRegister(requestDuration, requestTotal, calculationTotal, batchRunTotal,
		batchDuration, batchLoans, alertCount, cacheHits, cacheMisses)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		calculationTotal: calculationTotal,
		batchRunTotal:    batchRunTotal,
		batchDuration:    batchDuration,
		batchLoans:       batchLoans,
		alertCount:       alertCount,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	if s == nil {
		return http.NotFoundHandler()
	}
	return s.handler
}

// ObserveRequest records one HTTP request.
func (s *MetricsService) ObserveRequest(method, path, status string, duration time.Duration) {
	if s == nil {
		return
	}
	s.requestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(method, path, status).Inc()
}

// CalculationObserved counts one calculation outcome.
func (s *MetricsService) CalculationObserved(result string) {
	if s == nil {
		return
	}
	s.calculationTotal.WithLabelValues(result).Inc()
}

// BatchRunObserved records a completed or failed daily run.
func (s *MetricsService) BatchRunObserved(status string, loansUpdated int, duration time.Duration) {
	if s == nil {
		return
	}
	s.batchRunTotal.WithLabelValues(status).Inc()
	s.batchDuration.Observe(duration.Seconds())
	s.batchLoans.Set(float64(loansUpdated))
}

// AlertsObserved records the size of the latest alert pass.
func (s *MetricsService) AlertsObserved(count int) {
	if s == nil {
		return
	}
	s.alertCount.Set(float64(count))
}

// CacheHit counts a jurisdiction cache hit.
func (s *MetricsService) CacheHit() {
	if s == nil {
		return
	}
	s.cacheHits.Inc()
}

// CacheMiss counts a jurisdiction cache miss.
func (s *MetricsService) CacheMiss() {
	if s == nil {
		return
	}
	s.cacheMisses.Inc()
}
