package pricesync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neilboltonAD/marketplace-admin-api/internal/models"
)

func TestFilterEmptyIsIdentity(t *testing.T) {
	records := availableFixture()
	assert.Equal(t, records, Filter(records, models.PriceUpdateFilter{}))
}

func TestFilterAbsentDistributorIsEmpty(t *testing.T) {
	out := Filter(availableFixture(), models.PriceUpdateFilter{Distributor: models.DistributorArrow})
	assert.Empty(t, out)
}

func TestFilterQueryMatchesNameOrIDCaseInsensitive(t *testing.T) {
	records := availableFixture()

	byName := Filter(records, models.PriceUpdateFilter{Query: "MICROSOFT"})
	assert.Equal(t, []string{"pu-001", "pu-004"}, IDs(byName))

	byID := Filter(records, models.PriceUpdateFilter{Query: "dbx"})
	assert.Equal(t, []string{"pu-003"}, IDs(byID))

	none := Filter(records, models.PriceUpdateFilter{Query: "oracle"})
	assert.Empty(t, none)
}

func TestFilterCombinesCriteriaAndPreservesOrder(t *testing.T) {
	synced := syncedFixture()
	out := Filter(synced, models.PriceUpdateFilter{Distributor: models.DistributorIngram, Status: models.PriceUpdateStatusFailed})
	assert.Equal(t, []string{"pu-102"}, IDs(out))

	out = Filter(availableFixture(), models.PriceUpdateFilter{Distributor: models.DistributorMicrosoft, Query: "teams"})
	assert.Equal(t, []string{"pu-004"}, IDs(out))
}

func TestFilterIsIdempotent(t *testing.T) {
	f := models.PriceUpdateFilter{Query: "microsoft"}
	once := Filter(availableFixture(), f)
	assert.Equal(t, once, Filter(once, f))
}
