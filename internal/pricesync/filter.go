// Package pricesync holds the review-and-apply workflow state for distributor price updates:
// filtering, selection, review staging and per-operator view sessions.
//
// Nothing in this package is safe for concurrent use; callers serialise access.
package pricesync

import (
	"strings"

	"github.com/neilboltonAD/marketplace-admin-api/internal/models"
)

// Filter returns the records matching every non-empty criterion of f, in input order.
// An empty filter returns records unchanged.
func Filter(records []models.PriceUpdateRecord, f models.PriceUpdateFilter) []models.PriceUpdateRecord {
	if f.Distributor == "" && f.Status == "" && f.Query == "" {
		return records
	}

	query := strings.ToLower(f.Query)
	out := make([]models.PriceUpdateRecord, 0, len(records))
	for _, rec := range records {
		if f.Distributor != "" && rec.Distributor != f.Distributor {
			continue
		}
		if f.Status != "" && rec.Status != f.Status {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(rec.ProductName), query) &&
			!strings.Contains(strings.ToLower(rec.ProductID), query) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// IDs extracts record identifiers preserving order.
func IDs(records []models.PriceUpdateRecord) []string {
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	return ids
}
