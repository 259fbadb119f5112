package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/neilboltonAD/marketplace-admin-api/internal/models"
	appErrors "github.com/neilboltonAD/marketplace-admin-api/pkg/errors"
	"github.com/neilboltonAD/marketplace-admin-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type syncedHistorySource interface {
	SyncedHistory(ctx context.Context, filter models.PriceUpdateFilter) ([]models.PriceUpdateRecord, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
	Rows        int
}

// PriceSyncExportService renders the synced history as CSV or PDF.
type PriceSyncExportService struct {
	source syncedHistorySource
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	now    func() time.Time
}

var syncedHistoryColumns = []export.Column{
	{Key: "id", Title: "ID", Width: 1},
	{Key: "product", Title: "Product", Width: 3},
	{Key: "productId", Title: "SKU", Width: 1.5},
	{Key: "distributor", Title: "Distributor", Width: 1.5},
	{Key: "currentPrice", Title: "Current", Width: 1},
	{Key: "newPrice", Title: "New", Width: 1},
	{Key: "percentChange", Title: "Change %", Width: 1},
	{Key: "status", Title: "Status", Width: 1},
	{Key: "updatedBy", Title: "Updated By", Width: 2},
	{Key: "updatedAt", Title: "Updated At", Width: 1.8},
	{Key: "error", Title: "Error", Width: 2.5},
}

// NewPriceSyncExportService constructs the exporter. Nil renderers default to pkg/export.
func NewPriceSyncExportService(source syncedHistorySource, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *PriceSyncExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &PriceSyncExportService{source: source, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// ExportSynced renders the synced history filtered by filter in format.
func (s *PriceSyncExportService) ExportSynced(ctx context.Context, format string, filter models.PriceUpdateFilter) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if filter.Status != "" && !filter.Status.Synced() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be PENDING, SUCCESS or FAILED")
	}
	if filter.Distributor != "" && !filter.Distributor.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown distributor")
	}

	records, err := s.source.SyncedHistory(ctx, filter)
	if err != nil {
		return nil, err
	}
	dataset := syncedHistoryDataset(records)

	var content []byte
	contentType := "text/csv"
	switch format {
	case ExportFormatPDF:
		contentType = "application/pdf"
		content, err = s.pdf.Render(dataset, "Synced Price Updates")
	default:
		content, err = s.csv.Render(dataset)
	}
	if err != nil {
		s.logger.Error("failed to render synced history", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("synced-price-updates-%s.%s", s.now().UTC().Format("20060102-150405"), format),
		ContentType: contentType,
		Content:     content,
		Rows:        len(records),
	}, nil
}

func syncedHistoryDataset(records []models.PriceUpdateRecord) export.Dataset {
	rows := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		row := map[string]string{
			"id":            rec.ID,
			"product":       rec.ProductName,
			"productId":     rec.ProductID,
			"distributor":   rec.Distributor.Label(),
			"currentPrice":  rec.CurrentPrice.StringFixed(2),
			"newPrice":      rec.NewPrice.StringFixed(2),
			"percentChange": rec.PercentChange.StringFixed(1),
			"status":        string(rec.Status),
		}
		if rec.UpdatedBy != nil {
			row["updatedBy"] = *rec.UpdatedBy
		}
		if rec.UpdatedAt != nil {
			row["updatedAt"] = rec.UpdatedAt.UTC().Format(time.RFC3339)
		}
		if rec.ErrorMessage != nil {
			row["error"] = *rec.ErrorMessage
		}
		rows = append(rows, row)
	}
	return export.Dataset{Columns: syncedHistoryColumns, Rows: rows}
}
