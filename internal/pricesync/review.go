package pricesync

import (
	"github.com/neilboltonAD/marketplace-admin-api/internal/models"
)

// Review is a staged snapshot of selected records awaiting confirmation.
type Review struct {
	items []models.PriceUpdateRecord
}

// OpenReview copies the selected records out of available, keeping available order.
// Selected ids that are no longer available are skipped.
func OpenReview(available []models.PriceUpdateRecord, selection *Selection) *Review {
	items := make([]models.PriceUpdateRecord, 0, selection.Len())
	for _, rec := range available {
		if rec.Status == models.PriceUpdateStatusAvailable && selection.Has(rec.ID) {
			items = append(items, rec.Clone())
		}
	}
	return &Review{items: items}
}

// Items returns a copy of the staged records.
func (r *Review) Items() []models.PriceUpdateRecord {
	out := make([]models.PriceUpdateRecord, len(r.items))
	for i, rec := range r.items {
		out[i] = rec.Clone()
	}
	return out
}

// IDs returns the staged ids in review order.
func (r *Review) IDs() []string {
	return IDs(r.items)
}

// Len returns the number of staged records.
func (r *Review) Len() int { return len(r.items) }

// Empty reports whether nothing is staged, which disables commit.
func (r *Review) Empty() bool { return len(r.items) == 0 }

// Remove drops id from the staging list and reports whether it was staged.
func (r *Review) Remove(id string) bool {
	for i, rec := range r.items {
		if rec.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return true
		}
	}
	return false
}
