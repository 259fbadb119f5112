// Package seed provides the sample price updates the service starts with.
package seed

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/neilboltonAD/marketplace-admin-api/internal/models"
)

type sample struct {
	id, productID, name string
	distributor         models.Distributor
	current, next       string
	detected            time.Duration
	status              models.PriceUpdateStatus
	updatedBy           string
	updated             time.Duration
	errorMessage        string
}

var samples = []sample{
	{id: "pu-001", productID: "MS-365-BP", name: "Microsoft 365 Business Premium", distributor: models.DistributorMicrosoft, current: "32.00", next: "35.00", detected: 2 * time.Hour},
	{id: "pu-002", productID: "ADOBE-CC-ALL", name: "Adobe Creative Cloud All Apps", distributor: models.DistributorIngram, current: "84.99", next: "89.99", detected: 3 * time.Hour},
	{id: "pu-003", productID: "DBX-BIZ-STD", name: "Dropbox Business Standard", distributor: models.DistributorTDSynnex, current: "15.00", next: "13.50", detected: 5 * time.Hour},
	{id: "pu-004", productID: "MS-TEAMS-ESS", name: "Microsoft Teams Essentials", distributor: models.DistributorMicrosoft, current: "4.00", next: "4.80", detected: 6 * time.Hour},
	{id: "pu-005", productID: "ACR-CYBER-PRO", name: "Acronis Cyber Protect Cloud", distributor: models.DistributorArrow, current: "120.00", next: "99.99", detected: 8 * time.Hour},
	{id: "pu-006", productID: "NORTON-SB", name: "Norton Small Business", distributor: models.DistributorIngram, current: "9.99", next: "10.49", detected: 9 * time.Hour},
	{id: "pu-007", productID: "GWS-BIZ-STD", name: "Google Workspace Business Standard", distributor: models.DistributorTDSynnex, current: "12.00", next: "14.00", detected: 12 * time.Hour},
	{id: "pu-008", productID: "MS-AZ-RI-D2", name: "Azure Reserved VM D2s v5", distributor: models.DistributorMicrosoft, current: "70.08", next: "66.58", detected: 20 * time.Hour},
	{id: "pu-009", productID: "VEEAM-BKP-365", name: "Veeam Backup for Microsoft 365", distributor: models.DistributorArrow, current: "2.50", next: "2.75", detected: 26 * time.Hour},
	{id: "pu-010", productID: "BTDF-GZ-BS", name: "Bitdefender GravityZone Business Security", distributor: models.DistributorIngram, current: "28.40", next: "28.40", detected: 30 * time.Hour},
	{id: "pu-011", productID: "ZOOM-PRO", name: "Zoom Workplace Pro", distributor: models.DistributorTDSynnex, current: "13.33", next: "14.99", detected: 36 * time.Hour},
	{id: "pu-012", productID: "MS-VISIO-P2", name: "Microsoft Visio Plan 2", distributor: models.DistributorMicrosoft, current: "15.00", next: "18.00", detected: 40 * time.Hour},

	{id: "pu-101", productID: "SLACK-PRO", name: "Slack Pro", distributor: models.DistributorIngram, current: "7.25", next: "8.75", detected: 72 * time.Hour, status: models.PriceUpdateStatusSuccess, updatedBy: "maria.lopez@marketplace.local", updated: 70 * time.Hour},
	{id: "pu-102", productID: "MS-PBI-PRO", name: "Power BI Pro", distributor: models.DistributorMicrosoft, current: "10.00", next: "14.00", detected: 80 * time.Hour, status: models.PriceUpdateStatusSuccess, updatedBy: "admin@marketplace.local", updated: 79 * time.Hour},
	{id: "pu-103", productID: "ATL-JIRA-STD", name: "Jira Software Standard", distributor: models.DistributorArrow, current: "8.15", next: "7.75", detected: 96 * time.Hour, status: models.PriceUpdateStatusFailed, updatedBy: "admin@marketplace.local", updated: 95 * time.Hour, errorMessage: "Distributor rejected price: SKU not found in Arrow catalog"},
	{id: "pu-104", productID: "KSP-EDR-OPT", name: "Kaspersky EDR Optimum", distributor: models.DistributorTDSynnex, current: "31.00", next: "33.00", detected: 100 * time.Hour, status: models.PriceUpdateStatusSuccess, updatedBy: "maria.lopez@marketplace.local", updated: 98 * time.Hour},
	{id: "pu-105", productID: "ADOBE-ACR-PRO", name: "Adobe Acrobat Pro", distributor: models.DistributorIngram, current: "19.99", next: "22.99", detected: 120 * time.Hour, status: models.PriceUpdateStatusFailed, updatedBy: "admin@marketplace.local", updated: 118 * time.Hour, errorMessage: "Timeout while pushing price to marketplace catalog"},
}

// Records returns the built-in sample set with timestamps relative to now.
// Synced samples are ordered most recent first.
func Records(now time.Time) []models.PriceUpdateRecord {
	out := make([]models.PriceUpdateRecord, 0, len(samples))
	for _, s := range samples {
		out = append(out, s.record(now))
	}
	return out
}

func (s sample) record(now time.Time) models.PriceUpdateRecord {
	status := s.status
	if status == "" {
		status = models.PriceUpdateStatusAvailable
	}
	rec := models.PriceUpdateRecord{
		ID:          s.id,
		ProductID:   s.productID,
		ProductName: s.name,
		Distributor: s.distributor,
		DetectedAt:  now.Add(-s.detected).UTC(),
		Status:      status,
	}
	rec.SetPrices(decimal.RequireFromString(s.current), decimal.RequireFromString(s.next))
	if status != models.PriceUpdateStatusAvailable {
		updatedAt := now.Add(-s.updated).UTC()
		by := s.updatedBy
		rec.UpdatedAt = &updatedAt
		rec.UpdatedBy = &by
	}
	if status == models.PriceUpdateStatusFailed {
		msg := s.errorMessage
		rec.ErrorMessage = &msg
	}
	return rec
}

// Validate checks the record invariants shared by built-in and file seeds.
func Validate(rec models.PriceUpdateRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("price update without id")
	}
	if !rec.Distributor.Valid() {
		return fmt.Errorf("%s: unknown distributor %q", rec.ID, rec.Distributor)
	}
	if !rec.Status.Valid() {
		return fmt.Errorf("%s: unknown status %q", rec.ID, rec.Status)
	}
	if !rec.CurrentPrice.IsPositive() {
		return fmt.Errorf("%s: current price must be greater than zero", rec.ID)
	}
	if rec.NewPrice.IsNegative() {
		return fmt.Errorf("%s: new price must not be negative", rec.ID)
	}
	if rec.Status == models.PriceUpdateStatusAvailable && (rec.UpdatedAt != nil || rec.UpdatedBy != nil || rec.ErrorMessage != nil) {
		return fmt.Errorf("%s: available records cannot carry update fields", rec.ID)
	}
	if rec.Status != models.PriceUpdateStatusFailed && rec.ErrorMessage != nil {
		return fmt.Errorf("%s: only failed records carry an error message", rec.ID)
	}
	return nil
}
