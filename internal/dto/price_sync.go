package dto

import (
	"time"

	"github.com/neilboltonAD/marketplace-admin-api/internal/models"
)

// CreatePriceSyncSessionRequest opens an operator view. View defaults to available.
type CreatePriceSyncSessionRequest struct {
	View string `json:"view" validate:"omitempty,oneof=available synced"`
}

// SwitchPriceSyncTabRequest changes the active tab.
type SwitchPriceSyncTabRequest struct {
	View string `json:"view" validate:"required,oneof=available synced"`
}

// UpdatePriceSyncFiltersRequest replaces the filter state. Distributor and status accept an option in either shape.
type UpdatePriceSyncFiltersRequest struct {
	Query       string  `json:"query" validate:"max=200"`
	Distributor *Option `json:"distributor"`
	Status      *Option `json:"status"`
}

// SetPriceSyncPageRequest moves to a page.
type SetPriceSyncPageRequest struct {
	Page int `json:"page" validate:"required,min=1"`
}

// ToggleSelectionRequest flips one record in the selection.
type ToggleSelectionRequest struct {
	RecordID string `json:"recordId" validate:"required"`
}

// RegisterPriceUpdateRequest records a detected price discrepancy.
type RegisterPriceUpdateRequest struct {
	ID           string     `json:"id" validate:"omitempty,max=64"`
	ProductID    string     `json:"productId" validate:"required,max=64"`
	ProductName  string     `json:"productName" validate:"required,max=200"`
	Distributor  string     `json:"distributor" validate:"required"`
	CurrentPrice string     `json:"currentPrice" validate:"required,numeric"`
	NewPrice     string     `json:"newPrice" validate:"required,numeric"`
	DetectedAt   *time.Time `json:"detectedAt"`
}

// PriceSyncFilters echoes the active filter state.
type PriceSyncFilters struct {
	Query       string                   `json:"query"`
	Distributor models.Distributor       `json:"distributor"`
	Status      models.PriceUpdateStatus `json:"status"`
}

// PriceSyncCounts reports collection sizes.
type PriceSyncCounts struct {
	Available int `json:"available"`
	Synced    int `json:"synced"`
	Pending   int `json:"pending"`
}

// PriceSyncReview is the staged list awaiting confirmation.
type PriceSyncReview struct {
	Items     []models.PriceUpdateRecord `json:"items"`
	Count     int                        `json:"count"`
	CanCommit bool                       `json:"canCommit"`
}

// PriceSyncSessionView is the rendered state of one session.
type PriceSyncSessionView struct {
	ID                 string                     `json:"id"`
	Operator           string                     `json:"operator"`
	View               models.PriceSyncView       `json:"view"`
	Filters            PriceSyncFilters           `json:"filters"`
	Records            []models.PriceUpdateRecord `json:"records"`
	Pagination         models.Pagination          `json:"pagination"`
	Selection          []string                   `json:"selection"`
	AllVisibleSelected bool                       `json:"allVisibleSelected"`
	Review             *PriceSyncReview           `json:"review,omitempty"`
	Counts             PriceSyncCounts            `json:"counts"`
	UpdatedAt          time.Time                  `json:"updatedAt"`
}

// PriceSyncCommitResult describes a committed batch.
type PriceSyncCommitResult struct {
	BatchID      string                     `json:"batchId"`
	Committed    []models.PriceUpdateRecord `json:"committed"`
	ResolveAfter string                     `json:"resolveAfter"`
	Session      PriceSyncSessionView       `json:"session"`
}

// PriceSyncOptions lists combobox options for the review page.
type PriceSyncOptions struct {
	Views        []Option `json:"views"`
	Distributors []Option `json:"distributors"`
	Statuses     []Option `json:"statuses"`
}
