package pricesync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilboltonAD/marketplace-admin-api/internal/models"
)

var now = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func TestNewSessionDefaults(t *testing.T) {
	s := NewSession("s-1", "ops@example.com", now)
	assert.Equal(t, models.PriceSyncViewAvailable, s.View)
	assert.Equal(t, 1, s.Page)
	assert.Zero(t, s.Selection.Len())
	assert.Nil(t, s.Review)
}

func TestSwitchTabResetsEverything(t *testing.T) {
	available := availableFixture()
	s := NewSession("s-1", "ops", now)
	require.NoError(t, s.SetFilters(Filters{Query: "microsoft", Distributor: models.DistributorMicrosoft}, now))
	s.SetPage(3, now)
	_, err := s.Toggle("pu-001", available, now)
	require.NoError(t, err)
	_, err = s.OpenReview(available, now)
	require.NoError(t, err)

	require.NoError(t, s.SwitchTab(models.PriceSyncViewSynced, now))
	assert.Equal(t, models.PriceSyncViewSynced, s.View)
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, Filters{}, s.Filters)
	assert.Zero(t, s.Selection.Len())
	assert.Nil(t, s.Review)

	require.NoError(t, s.SetFilters(Filters{Status: models.PriceUpdateStatusFailed}, now))
	require.NoError(t, s.SwitchTab(models.PriceSyncViewAvailable, now))
	assert.Equal(t, Filters{}, s.Filters)

	assert.ErrorIs(t, s.SwitchTab("archive", now), ErrInvalidView)
}

func TestSetFiltersValidatesAndResetsPage(t *testing.T) {
	s := NewSession("s-1", "ops", now)
	s.SetPage(4, now)

	assert.ErrorIs(t, s.SetFilters(Filters{Status: models.PriceUpdateStatusPending}, now), ErrStatusFilterUnavailable)
	assert.ErrorIs(t, s.SetFilters(Filters{Distributor: "ACME"}, now), ErrInvalidDistributor)
	assert.Equal(t, 4, s.Page, "rejected filters leave state untouched")

	require.NoError(t, s.SetFilters(Filters{Query: "zoom"}, now))
	assert.Equal(t, 1, s.Page)

	require.NoError(t, s.SwitchTab(models.PriceSyncViewSynced, now))
	assert.ErrorIs(t, s.SetFilters(Filters{Status: models.PriceUpdateStatusAvailable}, now), ErrInvalidStatus)
}

func TestToggleOnlyAvailableRecords(t *testing.T) {
	available := availableFixture()
	s := NewSession("s-1", "ops", now)

	_, err := s.Toggle("pu-101", available, now)
	assert.ErrorIs(t, err, ErrNotSelectable)

	selected, err := s.Toggle("pu-002", available, now)
	require.NoError(t, err)
	assert.True(t, selected)

	require.NoError(t, s.SwitchTab(models.PriceSyncViewSynced, now))
	_, err = s.Toggle("pu-002", available, now)
	assert.ErrorIs(t, err, ErrSelectionReadOnly)
	assert.ErrorIs(t, s.ToggleAll(available, now), ErrSelectionReadOnly)
}

func TestToggleAllUsesFilteredVisibleSet(t *testing.T) {
	available := availableFixture()
	s := NewSession("s-1", "ops", now)
	require.NoError(t, s.SetFilters(Filters{Distributor: models.DistributorMicrosoft}, now))

	require.NoError(t, s.ToggleAll(available, now))
	assert.Equal(t, []string{"pu-001", "pu-004"}, s.Selection.IDs())

	require.NoError(t, s.ToggleAll(available, now))
	assert.Zero(t, s.Selection.Len())
}

func TestRemoveFromReviewAlsoDeselects(t *testing.T) {
	available := availableFixture()
	s := NewSession("s-1", "ops", now)
	s.Selection.Replace([]string{"pu-001", "pu-002"})

	review, err := s.OpenReview(available, now)
	require.NoError(t, err)
	require.Equal(t, 2, review.Len())

	require.NoError(t, s.RemoveFromReview("pu-001", now))
	assert.False(t, s.Selection.Has("pu-001"))
	assert.Equal(t, []string{"pu-002"}, s.Review.IDs())

	assert.ErrorIs(t, s.RemoveFromReview("pu-001", now), ErrNotInReview)

	s.CloseReview(now)
	assert.ErrorIs(t, s.RemoveFromReview("pu-002", now), ErrReviewNotOpen)
	assert.True(t, s.Selection.Has("pu-002"), "cancelling the review keeps the selection")
}

func TestOpenReviewRequiresSelection(t *testing.T) {
	s := NewSession("s-1", "ops", now)
	_, err := s.OpenReview(availableFixture(), now)
	assert.ErrorIs(t, err, ErrNothingSelected)
}

func TestPruneDropsCommittedElsewhere(t *testing.T) {
	available := availableFixture()
	s := NewSession("s-1", "ops", now)
	s.Selection.Replace([]string{"pu-001", "pu-002"})
	_, err := s.OpenReview(available, now)
	require.NoError(t, err)

	remaining := available[1:]
	assert.Equal(t, 1, s.Prune(remaining))
	assert.Equal(t, []string{"pu-002"}, s.Selection.IDs())
	assert.Equal(t, []string{"pu-002"}, s.Review.IDs())
}

func TestCommittedClearsSelectionAndReview(t *testing.T) {
	s := NewSession("s-1", "ops", now)
	s.Selection.Replace([]string{"pu-001"})
	_, err := s.OpenReview(availableFixture(), now)
	require.NoError(t, err)

	s.Committed(now)
	assert.Zero(t, s.Selection.Len())
	assert.Nil(t, s.Review)
}
