package models

import "time"

// SystemMetrics is a JSON friendly summary of the Prometheus counters.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	CommitsTotal             uint64    `json:"price_sync_commits_total"`
	RecordsCommitted         uint64    `json:"price_sync_records_committed_total"`
	RecordsResolved          uint64    `json:"price_sync_records_resolved_total"`
	AvailableRecords         int       `json:"price_sync_available"`
	PendingRecords           int       `json:"price_sync_pending"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
