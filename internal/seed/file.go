package seed

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"

	"github.com/neilboltonAD/marketplace-admin-api/internal/dto"
	"github.com/neilboltonAD/marketplace-admin-api/internal/models"
)

type fileRecord struct {
	ID           string      `toml:"id"`
	ProductID    string      `toml:"product_id"`
	ProductName  string      `toml:"product_name"`
	Distributor  interface{} `toml:"distributor"`
	CurrentPrice interface{} `toml:"current_price"`
	NewPrice     interface{} `toml:"new_price"`
	DetectedAt   time.Time   `toml:"detected_at"`
	Status       string      `toml:"status"`
	UpdatedAt    *time.Time  `toml:"updated_at"`
	UpdatedBy    string      `toml:"updated_by"`
	ErrorMessage string      `toml:"error_message"`
}

type fileDocument struct {
	Available []fileRecord `toml:"available"`
	Synced    []fileRecord `toml:"synced"`
}

// LoadFile reads a TOML seed file. A missing path returns os.ErrNotExist wrapped.
func LoadFile(path string) ([]models.PriceUpdateRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

// Parse decodes a TOML seed document from r.
func Parse(r io.Reader) ([]models.PriceUpdateRecord, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var doc fileDocument
	if err := toml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	out := make([]models.PriceUpdateRecord, 0, len(doc.Available)+len(doc.Synced))
	for i, fr := range doc.Available {
		rec, err := fr.toRecord(models.PriceUpdateStatusAvailable)
		if err != nil {
			return nil, fmt.Errorf("available[%d]: %w", i, err)
		}
		if rec.Status != models.PriceUpdateStatusAvailable {
			return nil, fmt.Errorf("available[%d]: status must be %s", i, models.PriceUpdateStatusAvailable)
		}
		out = append(out, rec)
	}
	for i, fr := range doc.Synced {
		rec, err := fr.toRecord(models.PriceUpdateStatusSuccess)
		if err != nil {
			return nil, fmt.Errorf("synced[%d]: %w", i, err)
		}
		if !rec.Status.Synced() {
			return nil, fmt.Errorf("synced[%d]: status %s is not a synced status", i, rec.Status)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (fr fileRecord) toRecord(defaultStatus models.PriceUpdateStatus) (models.PriceUpdateRecord, error) {
	opt, err := dto.NormalizeOption(fr.Distributor)
	if err != nil {
		return models.PriceUpdateRecord{}, fmt.Errorf("distributor: %w", err)
	}
	distributor, ok := models.ParseDistributor(opt.Value)
	if !ok {
		return models.PriceUpdateRecord{}, fmt.Errorf("distributor: unknown %q", opt.Value)
	}
	current, err := decodePrice(fr.CurrentPrice)
	if err != nil {
		return models.PriceUpdateRecord{}, fmt.Errorf("current_price: %w", err)
	}
	next, err := decodePrice(fr.NewPrice)
	if err != nil {
		return models.PriceUpdateRecord{}, fmt.Errorf("new_price: %w", err)
	}

	status := models.PriceUpdateStatus(strings.ToUpper(strings.TrimSpace(fr.Status)))
	if status == "" {
		status = defaultStatus
	}
	rec := models.PriceUpdateRecord{
		ID:          strings.TrimSpace(fr.ID),
		ProductID:   strings.TrimSpace(fr.ProductID),
		ProductName: strings.TrimSpace(fr.ProductName),
		Distributor: distributor,
		DetectedAt:  fr.DetectedAt.UTC(),
		Status:      status,
	}
	rec.SetPrices(current, next)
	if status.Synced() {
		if fr.UpdatedAt != nil {
			ts := fr.UpdatedAt.UTC()
			rec.UpdatedAt = &ts
		}
		if by := strings.TrimSpace(fr.UpdatedBy); by != "" {
			rec.UpdatedBy = &by
		}
	}
	if msg := strings.TrimSpace(fr.ErrorMessage); msg != "" {
		rec.ErrorMessage = &msg
	}
	if err := Validate(rec); err != nil {
		return models.PriceUpdateRecord{}, err
	}
	return rec, nil
}

func decodePrice(raw interface{}) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	case float64:
		return decimal.NewFromFloat(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case nil:
		return decimal.Decimal{}, errors.New("missing")
	}
	return decimal.Decimal{}, fmt.Errorf("unsupported type %T", raw)
}
