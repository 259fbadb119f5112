package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Distributor identifies an upstream product and pricing source.
type Distributor string

const (
	DistributorIngram    Distributor = "INGRAM"
	DistributorTDSynnex  Distributor = "TD_SYNNEX"
	DistributorMicrosoft Distributor = "MICROSOFT"
	DistributorArrow     Distributor = "ARROW"
)

// Distributors lists every supported distributor in display order.
var Distributors = []Distributor{DistributorIngram, DistributorTDSynnex, DistributorMicrosoft, DistributorArrow}

var distributorLabels = map[Distributor]string{
	DistributorIngram:    "Ingram Micro",
	DistributorTDSynnex:  "TD Synnex",
	DistributorMicrosoft: "Microsoft Marketplace",
	DistributorArrow:     "Arrow",
}

// Valid reports whether d is one of the supported distributors.
func (d Distributor) Valid() bool {
	_, ok := distributorLabels[d]
	return ok
}

// Label returns the human readable distributor name.
func (d Distributor) Label() string {
	if label, ok := distributorLabels[d]; ok {
		return label
	}
	return string(d)
}

// ParseDistributor normalises user input such as "td-synnex" into a Distributor.
func ParseDistributor(raw string) (Distributor, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")
	d := Distributor(normalized)
	return d, d.Valid()
}

// PriceUpdateStatus captures the lifecycle of a detected price discrepancy.
type PriceUpdateStatus string

const (
	PriceUpdateStatusAvailable PriceUpdateStatus = "AVAILABLE"
	PriceUpdateStatusPending   PriceUpdateStatus = "PENDING"
	PriceUpdateStatusSuccess   PriceUpdateStatus = "SUCCESS"
	PriceUpdateStatusFailed    PriceUpdateStatus = "FAILED"
)

// SyncedStatuses are the statuses a record may hold once it has left the available list.
var SyncedStatuses = []PriceUpdateStatus{PriceUpdateStatusPending, PriceUpdateStatusSuccess, PriceUpdateStatusFailed}

// Valid reports whether s is a known status.
func (s PriceUpdateStatus) Valid() bool {
	switch s {
	case PriceUpdateStatusAvailable, PriceUpdateStatusPending, PriceUpdateStatusSuccess, PriceUpdateStatusFailed:
		return true
	}
	return false
}

// Synced reports whether the status belongs to the synced collection.
func (s PriceUpdateStatus) Synced() bool {
	return s == PriceUpdateStatusPending || s == PriceUpdateStatusSuccess || s == PriceUpdateStatusFailed
}

// PriceUpdateRecord is a detected difference between the marketplace price and a distributor price.
type PriceUpdateRecord struct {
	ID            string            `json:"id"`
	ProductID     string            `json:"productId"`
	ProductName   string            `json:"productName"`
	Distributor   Distributor       `json:"distributor"`
	CurrentPrice  decimal.Decimal   `json:"currentPrice"`
	NewPrice      decimal.Decimal   `json:"newPrice"`
	PercentChange decimal.Decimal   `json:"percentChange"`
	DetectedAt    time.Time         `json:"detectedAt"`
	Status        PriceUpdateStatus `json:"status"`
	UpdatedAt     *time.Time        `json:"updatedAt,omitempty"`
	UpdatedBy     *string           `json:"updatedBy,omitempty"`
	ErrorMessage  *string           `json:"errorMessage,omitempty"`
}

// SetPrices assigns both prices and recomputes the derived percentage.
func (r *PriceUpdateRecord) SetPrices(current, next decimal.Decimal) {
	r.CurrentPrice = current
	r.NewPrice = next
	r.PercentChange = PercentChange(current, next)
}

// PercentChange returns (next-current)/current*100 rounded to one decimal place.
// A zero current price yields zero.
func PercentChange(current, next decimal.Decimal) decimal.Decimal {
	if current.IsZero() {
		return decimal.Zero
	}
	return next.Sub(current).Div(current).Mul(decimal.NewFromInt(100)).Round(1)
}

// Clone returns a deep copy so callers never share pointer fields with the store.
func (r PriceUpdateRecord) Clone() PriceUpdateRecord {
	out := r
	if r.UpdatedAt != nil {
		ts := *r.UpdatedAt
		out.UpdatedAt = &ts
	}
	if r.UpdatedBy != nil {
		by := *r.UpdatedBy
		out.UpdatedBy = &by
	}
	if r.ErrorMessage != nil {
		msg := *r.ErrorMessage
		out.ErrorMessage = &msg
	}
	return out
}

// PriceSyncView names the two tabs of the review page.
type PriceSyncView string

const (
	PriceSyncViewAvailable PriceSyncView = "available"
	PriceSyncViewSynced    PriceSyncView = "synced"
)

// Valid reports whether v is a known view.
func (v PriceSyncView) Valid() bool {
	return v == PriceSyncViewAvailable || v == PriceSyncViewSynced
}

// PriceUpdateFilter narrows a collection. Zero values mean "no constraint".
type PriceUpdateFilter struct {
	Distributor Distributor
	Status      PriceUpdateStatus
	Query       string
}
