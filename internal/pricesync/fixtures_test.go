package pricesync

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/neilboltonAD/marketplace-admin-api/internal/models"
)

var detected = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func record(id, productID, name string, d models.Distributor, status models.PriceUpdateStatus) models.PriceUpdateRecord {
	rec := models.PriceUpdateRecord{
		ID:          id,
		ProductID:   productID,
		ProductName: name,
		Distributor: d,
		DetectedAt:  detected,
		Status:      status,
	}
	rec.SetPrices(decimal.NewFromInt(32), decimal.NewFromInt(35))
	return rec
}

func availableFixture() []models.PriceUpdateRecord {
	return []models.PriceUpdateRecord{
		record("pu-001", "MS-365-BP", "Microsoft 365 Business Premium", models.DistributorMicrosoft, models.PriceUpdateStatusAvailable),
		record("pu-002", "ADOBE-CC", "Adobe Creative Cloud", models.DistributorIngram, models.PriceUpdateStatusAvailable),
		record("pu-003", "DBX-BIZ", "Dropbox Business", models.DistributorTDSynnex, models.PriceUpdateStatusAvailable),
		record("pu-004", "MS-TEAMS-E", "Microsoft Teams Essentials", models.DistributorMicrosoft, models.PriceUpdateStatusAvailable),
	}
}

func syncedFixture() []models.PriceUpdateRecord {
	return []models.PriceUpdateRecord{
		record("pu-101", "ZOOM-PRO", "Zoom Pro", models.DistributorArrow, models.PriceUpdateStatusSuccess),
		record("pu-102", "SLACK-PRO", "Slack Pro", models.DistributorIngram, models.PriceUpdateStatusFailed),
		record("pu-103", "MS-VISIO", "Microsoft Visio Plan 2", models.DistributorMicrosoft, models.PriceUpdateStatusPending),
	}
}
