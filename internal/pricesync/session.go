package pricesync

import (
	"errors"
	"time"

	"github.com/neilboltonAD/marketplace-admin-api/internal/models"
)

var (
	// ErrInvalidView is returned for an unknown tab.
	ErrInvalidView = errors.New("unknown price sync view")
	// ErrStatusFilterUnavailable is returned when a status filter is applied to the available view.
	ErrStatusFilterUnavailable = errors.New("status filter only applies to the synced view")
	// ErrInvalidDistributor is returned for a distributor outside the supported set.
	ErrInvalidDistributor = errors.New("unknown distributor")
	// ErrInvalidStatus is returned for a synced status outside PENDING, SUCCESS and FAILED.
	ErrInvalidStatus = errors.New("unknown synced status")
	// ErrSelectionReadOnly is returned when selecting from the synced view.
	ErrSelectionReadOnly = errors.New("synced records cannot be selected")
	// ErrNotSelectable is returned when toggling an id that is not an available record.
	ErrNotSelectable = errors.New("record is not available for selection")
	// ErrNothingSelected is returned when opening a review with an empty selection.
	ErrNothingSelected = errors.New("no price updates selected")
	// ErrReviewNotOpen is returned for review operations without an open review.
	ErrReviewNotOpen = errors.New("review is not open")
	// ErrNotInReview is returned when removing an id that is not staged.
	ErrNotInReview = errors.New("record is not in the review list")
)

// Filters is the operator controlled filter state of a session.
type Filters struct {
	Query       string
	Distributor models.Distributor
	Status      models.PriceUpdateStatus
}

// Session is one operator's view over the price update collections.
type Session struct {
	ID        string
	Operator  string
	View      models.PriceSyncView
	Page      int
	Filters   Filters
	Selection *Selection
	Review    *Review
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession starts on the available tab, first page, no filters.
func NewSession(id, operator string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Operator:  operator,
		View:      models.PriceSyncViewAvailable,
		Page:      1,
		Selection: NewSelection(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SwitchTab moves to view and resets page, filters, selection and any open review.
// Switching to the current tab performs the same reset.
func (s *Session) SwitchTab(view models.PriceSyncView, now time.Time) error {
	if !view.Valid() {
		return ErrInvalidView
	}
	s.View = view
	s.Page = 1
	s.Filters = Filters{}
	s.Selection.Clear()
	s.Review = nil
	s.UpdatedAt = now
	return nil
}

// SetFilters replaces the filter state and returns to the first page.
func (s *Session) SetFilters(f Filters, now time.Time) error {
	if f.Distributor != "" && !f.Distributor.Valid() {
		return ErrInvalidDistributor
	}
	if f.Status != "" {
		if s.View != models.PriceSyncViewSynced {
			return ErrStatusFilterUnavailable
		}
		if !f.Status.Synced() {
			return ErrInvalidStatus
		}
	}
	s.Filters = f
	s.Page = 1
	s.UpdatedAt = now
	return nil
}

// SetPage moves to page, clamped to at least 1. The upper bound is applied when rendering.
func (s *Session) SetPage(page int, now time.Time) {
	if page < 1 {
		page = 1
	}
	s.Page = page
	s.UpdatedAt = now
}

// Criteria converts the filter state into a record filter.
func (s *Session) Criteria() models.PriceUpdateFilter {
	return models.PriceUpdateFilter{
		Distributor: s.Filters.Distributor,
		Status:      s.Filters.Status,
		Query:       s.Filters.Query,
	}
}

// Toggle flips id in the selection. available is the current available collection.
func (s *Session) Toggle(id string, available []models.PriceUpdateRecord, now time.Time) (bool, error) {
	if s.View != models.PriceSyncViewAvailable {
		return false, ErrSelectionReadOnly
	}
	if !s.Selection.Has(id) && !contains(available, id) {
		return false, ErrNotSelectable
	}
	s.UpdatedAt = now
	return s.Selection.Toggle(id), nil
}

// ToggleAll applies select-all over the records visible under the current filters.
func (s *Session) ToggleAll(available []models.PriceUpdateRecord, now time.Time) error {
	if s.View != models.PriceSyncViewAvailable {
		return ErrSelectionReadOnly
	}
	s.Selection.ToggleAll(IDs(Filter(available, s.Criteria())))
	s.UpdatedAt = now
	return nil
}

// ClearSelection empties the selection.
func (s *Session) ClearSelection(now time.Time) {
	s.Selection.Clear()
	s.UpdatedAt = now
}

// Prune drops selected and staged ids that are no longer available and returns how many selections were dropped.
func (s *Session) Prune(available []models.PriceUpdateRecord) int {
	live := make(map[string]struct{}, len(available))
	for _, rec := range available {
		live[rec.ID] = struct{}{}
	}
	dropped := s.Selection.Retain(func(id string) bool {
		_, ok := live[id]
		return ok
	})
	if s.Review != nil {
		for _, id := range s.Review.IDs() {
			if _, ok := live[id]; !ok {
				s.Review.Remove(id)
			}
		}
	}
	return dropped
}

// OpenReview stages a snapshot of the selected available records.
func (s *Session) OpenReview(available []models.PriceUpdateRecord, now time.Time) (*Review, error) {
	if s.View != models.PriceSyncViewAvailable {
		return nil, ErrSelectionReadOnly
	}
	s.Prune(available)
	if s.Selection.Len() == 0 {
		return nil, ErrNothingSelected
	}
	s.Review = OpenReview(available, s.Selection)
	s.UpdatedAt = now
	return s.Review, nil
}

// CloseReview discards the staging list and keeps the selection.
func (s *Session) CloseReview(now time.Time) {
	s.Review = nil
	s.UpdatedAt = now
}

// RemoveFromReview drops id from the staging list and from the selection.
func (s *Session) RemoveFromReview(id string, now time.Time) error {
	if s.Review == nil {
		return ErrReviewNotOpen
	}
	if !s.Review.Remove(id) {
		return ErrNotInReview
	}
	s.Selection.Remove(id)
	s.UpdatedAt = now
	return nil
}

// Committed clears the selection and closes the review after a successful commit.
func (s *Session) Committed(now time.Time) {
	s.Selection.Clear()
	s.Review = nil
	s.UpdatedAt = now
}

func contains(records []models.PriceUpdateRecord, id string) bool {
	for _, rec := range records {
		if rec.ID == id {
			return true
		}
	}
	return false
}
