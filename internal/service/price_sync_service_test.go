package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilboltonAD/marketplace-admin-api/internal/dto"
	"github.com/neilboltonAD/marketplace-admin-api/internal/models"
	"github.com/neilboltonAD/marketplace-admin-api/internal/realtime"
	"github.com/neilboltonAD/marketplace-admin-api/internal/repository"
	"github.com/neilboltonAD/marketplace-admin-api/internal/seed"
	appErrors "github.com/neilboltonAD/marketplace-admin-api/pkg/errors"
)

type auditSinkStub struct {
	mu   sync.Mutex
	logs []models.AuditLog
	err  error
}

func (s *auditSinkStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.logs = append(s.logs, *log)
	return nil
}

func (s *auditSinkStub) ListByResource(ctx context.Context, resource, resourceID string, limit int) ([]models.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.AuditLog{}
	for _, log := range s.logs {
		if log.Resource == resource && log.ResourceID != nil && *log.ResourceID == resourceID {
			out = append(out, log)
		}
	}
	return out, nil
}

func (s *auditSinkStub) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.logs))
	for _, log := range s.logs {
		out = append(out, log.Action)
	}
	return out
}

type eventSinkStub struct {
	mu     sync.Mutex
	events []realtime.EventType
}

func (s *eventSinkStub) Publish(eventType realtime.EventType, payload interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, eventType)
	return nil
}

func (s *eventSinkStub) types() []realtime.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]realtime.EventType{}, s.events...)
}

var priceSyncNow = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestPriceSyncService(t *testing.T, delay time.Duration) (*PriceSyncService, *repository.PriceUpdateRepository, *auditSinkStub, *eventSinkStub) {
	t.Helper()
	repo := repository.NewPriceUpdateRepository()
	require.NoError(t, repo.Seed(context.Background(), seed.Records(priceSyncNow)))

	audit := &auditSinkStub{}
	events := &eventSinkStub{}
	svc := NewPriceSyncService(repo, nil,
		WithPriceSyncAudit(audit),
		WithPriceSyncEvents(events),
		WithPriceSyncMetrics(NewMetricsService()),
		WithPriceSyncClock(func() time.Time { return priceSyncNow }),
		WithPriceSyncIDGenerator(sequentialIDs()),
		WithPriceSyncResolveDelay(delay),
	)
	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)
	t.Cleanup(func() {
		svc.Stop()
		cancel()
	})
	return svc, repo, audit, events
}

func TestPriceSyncServiceCommitThenResolve(t *testing.T) {
	svc, repo, audit, events := newTestPriceSyncService(t, 20*time.Millisecond)
	ctx := context.Background()

	view, err := svc.CreateSession(ctx, dto.CreatePriceSyncSessionRequest{}, "")
	require.NoError(t, err)
	assert.Equal(t, models.PriceSyncViewAvailable, view.View)
	assert.Equal(t, "admin@marketplace.local", view.Operator)
	assert.Equal(t, 12, view.Pagination.TotalCount)
	assert.Equal(t, 2, view.Pagination.TotalPages)
	assert.Len(t, view.Records, 10)

	view, err = svc.ToggleSelection(ctx, view.ID, dto.ToggleSelectionRequest{RecordID: "pu-001"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pu-001"}, view.Selection)

	view, err = svc.OpenReview(ctx, view.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Review)
	assert.Equal(t, 1, view.Review.Count)
	assert.True(t, view.Review.CanCommit)
	assert.Equal(t, "9.4", view.Review.Items[0].PercentChange.StringFixed(1))

	result, err := svc.Commit(ctx, view.ID, "ops@example.com")
	require.NoError(t, err)
	require.Len(t, result.Committed, 1)
	committed := result.Committed[0]
	assert.Equal(t, "pu-001", committed.ID)
	assert.Equal(t, models.PriceUpdateStatusPending, committed.Status)
	require.NotNil(t, committed.UpdatedBy)
	assert.Equal(t, "ops@example.com", *committed.UpdatedBy)
	assert.Empty(t, result.Session.Selection)
	assert.Nil(t, result.Session.Review)
	assert.Equal(t, 11, result.Session.Counts.Available)
	assert.Equal(t, 1, result.Session.Counts.Pending)

	synced, err := repo.Synced(ctx)
	require.NoError(t, err)
	assert.Equal(t, "pu-001", synced[0].ID, "committed records lead the synced history")

	require.Eventually(t, func() bool {
		rec, err := repo.Get(ctx, "pu-001")
		return err == nil && rec.Status == models.PriceUpdateStatusSuccess
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		return len(events.types()) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []realtime.EventType{realtime.EventPriceSyncCommitted, realtime.EventPriceSyncResolved}, events.types())
	assert.Equal(t, []string{models.AuditActionPriceSyncCommit, models.AuditActionPriceSyncResolve}, audit.actions())

	history, err := svc.RecordHistory(ctx, "pu-001")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestPriceSyncServiceCommitRequiresOpenReview(t *testing.T) {
	svc, _, _, _ := newTestPriceSyncService(t, time.Hour)
	ctx := context.Background()

	view, err := svc.CreateSession(ctx, dto.CreatePriceSyncSessionRequest{}, "ops")
	require.NoError(t, err)

	_, err = svc.Commit(ctx, view.ID, "")
	assert.ErrorIs(t, err, appErrors.ErrReviewClosed)

	_, err = svc.OpenReview(ctx, view.ID)
	assert.ErrorIs(t, err, appErrors.ErrEmptyReview)

	_, err = svc.ToggleSelection(ctx, view.ID, dto.ToggleSelectionRequest{RecordID: "pu-002"})
	require.NoError(t, err)
	_, err = svc.OpenReview(ctx, view.ID)
	require.NoError(t, err)
	view, err = svc.RemoveFromReview(ctx, view.ID, "pu-002")
	require.NoError(t, err)
	assert.Empty(t, view.Selection)
	require.NotNil(t, view.Review)
	assert.False(t, view.Review.CanCommit)

	_, err = svc.Commit(ctx, view.ID, "")
	assert.ErrorIs(t, err, appErrors.ErrEmptyReview)

	_, err = svc.RemoveFromReview(ctx, view.ID, "pu-002")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestPriceSyncServiceConcurrentSessionConflict(t *testing.T) {
	svc, repo, _, _ := newTestPriceSyncService(t, time.Hour)
	ctx := context.Background()

	first, err := svc.CreateSession(ctx, dto.CreatePriceSyncSessionRequest{}, "alice")
	require.NoError(t, err)
	second, err := svc.CreateSession(ctx, dto.CreatePriceSyncSessionRequest{}, "bob")
	require.NoError(t, err)

	for _, id := range []string{first.ID, second.ID} {
		_, err = svc.ToggleSelection(ctx, id, dto.ToggleSelectionRequest{RecordID: "pu-003"})
		require.NoError(t, err)
		_, err = svc.OpenReview(ctx, id)
		require.NoError(t, err)
	}

	_, err = svc.Commit(ctx, first.ID, "")
	require.NoError(t, err)

	_, err = svc.Commit(ctx, second.ID, "")
	assert.ErrorIs(t, err, appErrors.ErrRecordNotAvailable)

	view, err := svc.GetSession(ctx, second.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Selection)
	require.NotNil(t, view.Review)
	assert.Zero(t, view.Review.Count)

	rec, err := repo.Get(ctx, "pu-003")
	require.NoError(t, err)
	require.NotNil(t, rec.UpdatedBy)
	assert.Equal(t, "alice", *rec.UpdatedBy)
}

func TestPriceSyncServiceFiltersAndPaging(t *testing.T) {
	svc, _, _, _ := newTestPriceSyncService(t, time.Hour)
	ctx := context.Background()

	view, err := svc.CreateSession(ctx, dto.CreatePriceSyncSessionRequest{}, "ops")
	require.NoError(t, err)

	view, err = svc.SetPage(ctx, view.ID, dto.SetPriceSyncPageRequest{Page: 99})
	require.NoError(t, err)
	assert.Equal(t, 2, view.Pagination.Page)
	assert.Len(t, view.Records, 2)

	labeled := dto.LabeledOption("MICROSOFT", "Microsoft Marketplace")
	view, err = svc.SetFilters(ctx, view.ID, dto.UpdatePriceSyncFiltersRequest{Distributor: &labeled})
	require.NoError(t, err)
	assert.Equal(t, 1, view.Pagination.Page)
	require.NotEmpty(t, view.Records)
	for _, rec := range view.Records {
		assert.Equal(t, models.DistributorMicrosoft, rec.Distributor)
	}

	status := dto.StringOption("SUCCESS")
	_, err = svc.SetFilters(ctx, view.ID, dto.UpdatePriceSyncFiltersRequest{Status: &status})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	unknown := dto.StringOption("ACME")
	_, err = svc.SetFilters(ctx, view.ID, dto.UpdatePriceSyncFiltersRequest{Distributor: &unknown})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	view, err = svc.SwitchTab(ctx, view.ID, dto.SwitchPriceSyncTabRequest{View: "synced"})
	require.NoError(t, err)
	assert.Equal(t, dto.PriceSyncFilters{}, view.Filters)
	assert.Equal(t, 5, view.Pagination.TotalCount)

	failed := dto.StringOption("failed")
	view, err = svc.SetFilters(ctx, view.ID, dto.UpdatePriceSyncFiltersRequest{Status: &failed})
	require.NoError(t, err)
	for _, rec := range view.Records {
		assert.Equal(t, models.PriceUpdateStatusFailed, rec.Status)
	}

	_, err = svc.ToggleSelection(ctx, view.ID, dto.ToggleSelectionRequest{RecordID: "pu-101"})
	assert.ErrorIs(t, err, appErrors.ErrPreconditionFailed)
}

func TestPriceSyncServiceToggleAllCoversFilteredSet(t *testing.T) {
	svc, _, _, _ := newTestPriceSyncService(t, time.Hour)
	ctx := context.Background()

	view, err := svc.CreateSession(ctx, dto.CreatePriceSyncSessionRequest{}, "ops")
	require.NoError(t, err)

	view, err = svc.ToggleAll(ctx, view.ID)
	require.NoError(t, err)
	assert.Len(t, view.Selection, 12)
	assert.True(t, view.AllVisibleSelected)

	view, err = svc.ToggleAll(ctx, view.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Selection)
	assert.False(t, view.AllVisibleSelected)

	_, err = svc.ToggleSelection(ctx, view.ID, dto.ToggleSelectionRequest{RecordID: "pu-101"})
	assert.ErrorIs(t, err, appErrors.ErrRecordNotAvailable)
}

func TestPriceSyncServiceStopLeavesPending(t *testing.T) {
	repo := repository.NewPriceUpdateRepository()
	require.NoError(t, repo.Seed(context.Background(), seed.Records(priceSyncNow)))
	svc := NewPriceSyncService(repo, nil, WithPriceSyncResolveDelay(time.Hour))
	svc.Start(context.Background())
	ctx := context.Background()

	view, err := svc.CreateSession(ctx, dto.CreatePriceSyncSessionRequest{}, "ops")
	require.NoError(t, err)
	_, err = svc.ToggleSelection(ctx, view.ID, dto.ToggleSelectionRequest{RecordID: "pu-005"})
	require.NoError(t, err)
	_, err = svc.OpenReview(ctx, view.ID)
	require.NoError(t, err)
	_, err = svc.Commit(ctx, view.ID, "")
	require.NoError(t, err)

	svc.Stop()

	rec, err := repo.Get(ctx, "pu-005")
	require.NoError(t, err)
	assert.Equal(t, models.PriceUpdateStatusPending, rec.Status)
}

func TestPriceSyncServiceRegister(t *testing.T) {
	svc, repo, audit, events := newTestPriceSyncService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterPriceUpdateRequest{
		ProductID:    "ZOOM-PRO",
		ProductName:  "Zoom Pro",
		Distributor:  "arrow",
		CurrentPrice: "0",
		NewPrice:     "14.99",
	}, "ops")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Register(ctx, dto.RegisterPriceUpdateRequest{
		ProductID:    "ZOOM-PRO",
		ProductName:  "Zoom Pro",
		Distributor:  "acme",
		CurrentPrice: "13.99",
		NewPrice:     "14.99",
	}, "ops")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	rec, err := svc.Register(ctx, dto.RegisterPriceUpdateRequest{
		ID:           "pu-200",
		ProductID:    "ZOOM-PRO",
		ProductName:  "Zoom Pro",
		Distributor:  "td-synnex",
		CurrentPrice: "20",
		NewPrice:     "15",
	}, "ops")
	require.NoError(t, err)
	assert.Equal(t, models.DistributorTDSynnex, rec.Distributor)
	assert.Equal(t, "-25.0", rec.PercentChange.StringFixed(1))
	assert.True(t, priceSyncNow.Equal(rec.DetectedAt))

	available, err := repo.Available(ctx)
	require.NoError(t, err)
	assert.Equal(t, "pu-200", available[len(available)-1].ID)

	_, err = svc.Register(ctx, dto.RegisterPriceUpdateRequest{
		ID:           "pu-101",
		ProductID:    "ZOOM-PRO",
		ProductName:  "Zoom Pro",
		Distributor:  "ARROW",
		CurrentPrice: "20",
		NewPrice:     "15",
	}, "ops")
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	assert.Equal(t, []string{models.AuditActionPriceUpdateRegister}, audit.actions())
	assert.Equal(t, []realtime.EventType{realtime.EventPriceSyncRegistered}, events.types())
}

func TestPriceSyncServiceUnknownSession(t *testing.T) {
	svc, _, _, _ := newTestPriceSyncService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, appErrors.ErrSessionNotFound)
	assert.ErrorIs(t, svc.CloseSession(ctx, "missing"), appErrors.ErrSessionNotFound)

	view, err := svc.CreateSession(ctx, dto.CreatePriceSyncSessionRequest{View: "synced"}, "ops")
	require.NoError(t, err)
	assert.Equal(t, models.PriceSyncViewSynced, view.View)
	assert.Equal(t, 1, svc.Sessions())
	require.NoError(t, svc.CloseSession(ctx, view.ID))
	assert.Zero(t, svc.Sessions())

	_, err = svc.GetRecord(ctx, "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestPriceSyncServiceOptions(t *testing.T) {
	svc := NewPriceSyncService(repository.NewPriceUpdateRepository(), nil)
	opts := svc.Options()
	require.Len(t, opts.Views, 2)
	require.Len(t, opts.Distributors, 4)
	assert.Equal(t, "INGRAM", opts.Distributors[0].Value)
	assert.Equal(t, "Ingram Micro", opts.Distributors[0].Label)
	assert.Equal(t, []dto.Option{dto.StringOption("PENDING"), dto.StringOption("SUCCESS"), dto.StringOption("FAILED")}, opts.Statuses)
}
