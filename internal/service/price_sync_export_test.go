package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilboltonAD/marketplace-admin-api/internal/models"
	"github.com/neilboltonAD/marketplace-admin-api/internal/seed"
	appErrors "github.com/neilboltonAD/marketplace-admin-api/pkg/errors"
	"github.com/neilboltonAD/marketplace-admin-api/pkg/export"
)

type syncedHistoryStub struct {
	records []models.PriceUpdateRecord
	filter  models.PriceUpdateFilter
	err     error
}

func (s *syncedHistoryStub) SyncedHistory(ctx context.Context, filter models.PriceUpdateFilter) ([]models.PriceUpdateRecord, error) {
	s.filter = filter
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

type pdfRendererStub struct {
	title string
	rows  int
}

func (p *pdfRendererStub) Render(data export.Dataset, title string) ([]byte, error) {
	p.title = title
	p.rows = len(data.Rows)
	return []byte("%PDF-stub"), nil
}

type failingCSVRenderer struct{}

func (failingCSVRenderer) Render(export.Dataset) ([]byte, error) {
	return nil, errors.New("disk full")
}

func syncedFixtures() []models.PriceUpdateRecord {
	var out []models.PriceUpdateRecord
	for _, rec := range seed.Records(priceSyncNow) {
		if rec.Status.Synced() {
			out = append(out, rec)
		}
	}
	return out
}

func TestPriceSyncExportCSV(t *testing.T) {
	source := &syncedHistoryStub{records: syncedFixtures()}
	svc := NewPriceSyncExportService(source, nil, nil, nil)
	svc.now = func() time.Time { return priceSyncNow }

	file, err := svc.ExportSynced(context.Background(), "CSV", models.PriceUpdateFilter{Status: models.PriceUpdateStatusFailed})
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, "synced-price-updates-20260302-093000.csv", file.Filename)
	assert.Equal(t, models.PriceUpdateStatusFailed, source.filter.Status)

	lines := strings.Split(strings.TrimSpace(string(file.Content)), "\n")
	require.Len(t, lines, len(source.records)+1)
	assert.True(t, strings.HasPrefix(lines[0], "ID,Product,SKU,Distributor"))
	assert.Contains(t, string(file.Content), "SKU not found in Arrow catalog")
}

func TestPriceSyncExportPDF(t *testing.T) {
	pdf := &pdfRendererStub{}
	svc := NewPriceSyncExportService(&syncedHistoryStub{records: syncedFixtures()}, nil, nil, pdf)

	file, err := svc.ExportSynced(context.Background(), "pdf", models.PriceUpdateFilter{})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, "Synced Price Updates", pdf.title)
	assert.Equal(t, 5, pdf.rows)
	assert.Equal(t, 5, file.Rows)
}

func TestPriceSyncExportRejectsInvalidInput(t *testing.T) {
	svc := NewPriceSyncExportService(&syncedHistoryStub{}, nil, nil, nil)

	_, err := svc.ExportSynced(context.Background(), "xlsx", models.PriceUpdateFilter{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.ExportSynced(context.Background(), "csv", models.PriceUpdateFilter{Status: models.PriceUpdateStatusAvailable})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestPriceSyncExportRenderFailure(t *testing.T) {
	svc := NewPriceSyncExportService(&syncedHistoryStub{records: syncedFixtures()}, nil, failingCSVRenderer{}, nil)

	_, err := svc.ExportSynced(context.Background(), "", models.PriceUpdateFilter{})
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}
