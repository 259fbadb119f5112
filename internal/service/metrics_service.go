package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/neilboltonAD/marketplace-admin-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	commits          prometheus.Counter
	recordsCommitted *prometheus.CounterVec
	recordsResolved  *prometheus.CounterVec
	resolveCancelled prometheus.Counter
	availableGauge   prometheus.Gauge
	pendingGauge     prometheus.Gauge
	settingsLatency  *prometheus.HistogramVec
	credentialChecks *prometheus.CounterVec

	requestCount         uint64
	requestDurationTotal uint64
	commitCount          uint64
	committedCount       uint64
	resolvedCount        uint64
	available            int64
	pending              int64
}

// NewMetricsService registers core Prometheus collectors.
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

	commits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "price_sync_commits_total",
		Help: "Review batches committed",
	})

	recordsCommitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "price_sync_records_committed_total",
		Help: "Price updates moved from available to pending",
	}, []string{"distributor"})

	recordsResolved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "price_sync_records_resolved_total",
		Help: "Price updates resolved from pending to a terminal status",
	}, []string{"status"})

	resolveCancelled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "price_sync_resolutions_cancelled_total",
		Help: "Deferred resolutions dropped because the service stopped",
	})

	availableGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "price_sync_available",
		Help: "Price updates awaiting review",
	})

	pendingGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "price_sync_pending",
		Help: "Committed price updates awaiting resolution",
	})

	settingsLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "distributor_settings_store_seconds",
		Help:    "Latency for distributor settings load and save",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	credentialChecks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "distributor_credential_checks_total",
		Help: "Credential test and save attempts",
	}, []string{"distributor", "action", "result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, commits, recordsCommitted, recordsResolved, resolveCancelled,
		availableGauge, pendingGauge, settingsLatency, credentialChecks, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:         registry,
		handler:          handler,
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		commits:          commits,
		recordsCommitted: recordsCommitted,
		recordsResolved:  recordsResolved,
		resolveCancelled: resolveCancelled,
		availableGauge:   availableGauge,
		pendingGauge:     pendingGauge,
		settingsLatency:  settingsLatency,
		credentialChecks: credentialChecks,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the private registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCommit counts a committed batch.
func (m *MetricsService) RecordCommit(records []models.PriceUpdateRecord) {
	if m == nil {
		return
	}
	m.commits.Inc()
	atomic.AddUint64(&m.commitCount, 1)
	for _, rec := range records {
		m.recordsCommitted.WithLabelValues(string(rec.Distributor)).Inc()
	}
	atomic.AddUint64(&m.committedCount, uint64(len(records)))
}

// RecordResolved counts records that reached a terminal status.
func (m *MetricsService) RecordResolved(records []models.PriceUpdateRecord) {
	if m == nil {
		return
	}
	for _, rec := range records {
		m.recordsResolved.WithLabelValues(string(rec.Status)).Inc()
	}
	atomic.AddUint64(&m.resolvedCount, uint64(len(records)))
}

// RecordResolutionCancelled counts a deferred resolution dropped on shutdown.
func (m *MetricsService) RecordResolutionCancelled() {
	if m == nil {
		return
	}
	m.resolveCancelled.Inc()
}

// SetPriceSyncBacklog updates the available and pending gauges.
func (m *MetricsService) SetPriceSyncBacklog(available, pending int) {
	if m == nil {
		return
	}
	m.availableGauge.Set(float64(available))
	m.pendingGauge.Set(float64(pending))
	atomic.StoreInt64(&m.available, int64(available))
	atomic.StoreInt64(&m.pending, int64(pending))
}

// ObserveSettingsStore tracks distributor settings backend latency.
func (m *MetricsService) ObserveSettingsStore(op string, duration time.Duration) {
	if m == nil {
		return
	}
	m.settingsLatency.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordCredentialCheck counts a credential test or save outcome.
func (m *MetricsService) RecordCredentialCheck(distributor models.Distributor, action string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "invalid"
	}
	m.credentialChecks.WithLabelValues(string(distributor), action, result).Inc()
}

// Snapshot returns aggregated metrics for the JSON summary endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		CommitsTotal:             atomic.LoadUint64(&m.commitCount),
		RecordsCommitted:         atomic.LoadUint64(&m.committedCount),
		RecordsResolved:          atomic.LoadUint64(&m.resolvedCount),
		AvailableRecords:         int(atomic.LoadInt64(&m.available)),
		PendingRecords:           int(atomic.LoadInt64(&m.pending)),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
