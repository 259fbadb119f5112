package console

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilboltonAD/marketplace-admin-api/internal/models"
	"github.com/neilboltonAD/marketplace-admin-api/internal/repository"
	"github.com/neilboltonAD/marketplace-admin-api/internal/seed"
	"github.com/neilboltonAD/marketplace-admin-api/internal/service"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	repo := repository.NewPriceUpdateRepository()
	require.NoError(t, repo.Seed(context.Background(), seed.Records(now)))

	svc := service.NewPriceSyncService(repo, nil,
		service.WithPriceSyncClock(func() time.Time { return now }),
		service.WithPriceSyncResolveDelay(time.Hour),
	)
	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)
	t.Cleanup(func() {
		svc.Stop()
		cancel()
	})

	m := New(Options{Context: ctx, Backend: svc, Operator: "console@marketplace.local"})
	return apply(t, m, m.openSessionCmd())
}

func apply(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	next, _ := m.Update(cmd())
	return next.(Model)
}

// press sends k and runs the resulting service call, if any.
func press(t *testing.T, m Model, k tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(k)
	return apply(t, next.(Model), cmd)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelOpensSession(t *testing.T) {
	m := newTestModel(t)
	require.NotNil(t, m.session)
	assert.Equal(t, models.PriceSyncViewAvailable, m.session.View)
	assert.Equal(t, "console@marketplace.local", m.session.Operator)
	assert.Len(t, m.session.Records, 10)
	assert.Contains(t, m.View(), "Available (12)")
}

func TestModelSelectReviewCommit(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	assert.Equal(t, []string{"pu-001"}, m.session.Selection)
	assert.Contains(t, m.View(), "[x]")

	m = press(t, m, runes("j"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	assert.Equal(t, []string{"pu-001", "pu-002"}, m.session.Selection)

	m = press(t, m, runes("r"))
	require.True(t, m.reviewOpen())
	assert.Equal(t, 2, m.session.Review.Count)

	m = press(t, m, runes("x"))
	require.True(t, m.reviewOpen())
	require.Len(t, m.session.Review.Items, 1)
	assert.Equal(t, "pu-002", m.session.Review.Items[0].ID)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.noticeErr, m.notice)
	assert.Contains(t, m.notice, "Applied 1 price update(s)")
	assert.False(t, m.reviewOpen())
	assert.Equal(t, 11, m.session.Counts.Available)
	assert.Equal(t, 1, m.session.Counts.Pending)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, models.PriceSyncViewSynced, m.session.View)
	require.NotEmpty(t, m.session.Records)
	assert.Equal(t, "pu-002", m.session.Records[0].ID)
	assert.Equal(t, "console@marketplace.local", *m.session.Records[0].UpdatedBy)

	m = press(t, m, runes("s"))
	assert.Equal(t, models.PriceUpdateStatusPending, m.session.Filters.Status)
	require.Len(t, m.session.Records, 1)
	assert.Contains(t, m.View(), "PENDING")
}

func TestModelReviewNeedsSelection(t *testing.T) {
	m := newTestModel(t)

	next, cmd := m.Update(runes("r"))
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.True(t, m.noticeErr)
	assert.False(t, m.reviewOpen())
}

func TestModelToggleAllAndClear(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, runes("a"))
	assert.Len(t, m.session.Selection, 12)
	assert.True(t, m.session.AllVisibleSelected)

	m = press(t, m, runes("c"))
	assert.Empty(t, m.session.Selection)
}

func TestModelSearchAndDistributorCycle(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(runes("/"))
	m = next.(Model)
	require.True(t, m.searching)
	next, _ = m.Update(runes("zoom"))
	m = next.(Model)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.searching)
	assert.Equal(t, "zoom", m.session.Filters.Query)
	require.Len(t, m.session.Records, 1)
	assert.Equal(t, "pu-011", m.session.Records[0].ID)

	m = press(t, m, runes("d"))
	assert.Equal(t, models.DistributorIngram, m.session.Filters.Distributor)
	assert.Equal(t, "zoom", m.session.Filters.Query)
	assert.Empty(t, m.session.Records)
	assert.Contains(t, m.View(), "No price updates match")
}

func TestModelPaging(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, runes("n"))
	assert.Equal(t, 2, m.session.Pagination.Page)
	assert.Len(t, m.session.Records, 2)

	m = press(t, m, runes("n"))
	assert.Equal(t, 2, m.session.Pagination.Page)

	m = press(t, m, runes("p"))
	assert.Equal(t, 1, m.session.Pagination.Page)
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestNextStatusCycles(t *testing.T) {
	got := nextStatus("")
	require.NotNil(t, got)
	assert.Equal(t, "PENDING", got.Value)
	assert.Equal(t, "FAILED", nextStatus(models.PriceUpdateStatusSuccess).Value)
	assert.Nil(t, nextStatus(models.PriceUpdateStatusFailed))
	assert.Nil(t, nextDistributor(models.DistributorArrow))
}
