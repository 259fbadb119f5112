package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/neilboltonAD/marketplace-admin-api/internal/dto"
	"github.com/neilboltonAD/marketplace-admin-api/internal/models"
	"github.com/neilboltonAD/marketplace-admin-api/internal/pricesync"
	"github.com/neilboltonAD/marketplace-admin-api/internal/realtime"
	"github.com/neilboltonAD/marketplace-admin-api/internal/repository"
	appErrors "github.com/neilboltonAD/marketplace-admin-api/pkg/errors"
	"github.com/neilboltonAD/marketplace-admin-api/pkg/jobs"
	"github.com/neilboltonAD/marketplace-admin-api/pkg/middleware/requestid"
)

const resolveJobType = "price_sync.resolve"

type priceUpdateStore interface {
	Available(ctx context.Context) ([]models.PriceUpdateRecord, error)
	Synced(ctx context.Context) ([]models.PriceUpdateRecord, error)
	List(ctx context.Context, view models.PriceSyncView) ([]models.PriceUpdateRecord, error)
	Get(ctx context.Context, id string) (*models.PriceUpdateRecord, error)
	Add(ctx context.Context, rec models.PriceUpdateRecord) error
	Commit(ctx context.Context, ids []string, operator string, now time.Time) ([]models.PriceUpdateRecord, error)
	Resolve(ctx context.Context, ids []string) ([]models.PriceUpdateRecord, error)
	Counts(ctx context.Context) (available, pending int)
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type auditReader interface {
	ListByResource(ctx context.Context, resource, resourceID string, limit int) ([]models.AuditLog, error)
}

type eventPublisher interface {
	Publish(eventType realtime.EventType, payload interface{}) error
}

// resolveBatch is the payload of a deferred resolution job.
type resolveBatch struct {
	BatchID  string
	IDs      []string
	Operator string
}

// CommittedEvent is pushed when a review batch is committed.
type CommittedEvent struct {
	BatchID   string                     `json:"batchId"`
	SessionID string                     `json:"sessionId"`
	Operator  string                     `json:"operator"`
	Records   []models.PriceUpdateRecord `json:"records"`
}

// ResolvedEvent is pushed when a batch reaches its terminal status.
type ResolvedEvent struct {
	BatchID string                     `json:"batchId"`
	Records []models.PriceUpdateRecord `json:"records"`
}

type sessionEntry struct {
	mu      sync.Mutex
	session *pricesync.Session
}

// PriceSyncService runs the distributor price review workflow over the in-memory record store.
type PriceSyncService struct {
	store           priceUpdateStore
	audit           auditLogger
	auditHistory    auditReader
	events          eventPublisher
	metrics         *MetricsService
	logger          *zap.Logger
	validator       *validator.Validate
	now             func() time.Time
	newID           func() string
	resolveDelay    time.Duration
	pageSize        int
	defaultOperator string
	workers         int

	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	queue    *jobs.Queue
}

// PriceSyncServiceOption configures the service.
type PriceSyncServiceOption func(*PriceSyncService)

// WithPriceSyncAudit enables the audit trail sink.
func WithPriceSyncAudit(audit auditLogger) PriceSyncServiceOption {
	return func(s *PriceSyncService) {
		s.audit = audit
		if reader, ok := audit.(auditReader); ok {
			s.auditHistory = reader
		}
	}
}

// WithPriceSyncEvents publishes commit and resolution events.
func WithPriceSyncEvents(events eventPublisher) PriceSyncServiceOption {
	return func(s *PriceSyncService) {
		s.events = events
	}
}

// WithPriceSyncMetrics records workflow counters.
func WithPriceSyncMetrics(metrics *MetricsService) PriceSyncServiceOption {
	return func(s *PriceSyncService) {
		s.metrics = metrics
	}
}

// WithPriceSyncClock overrides the time source.
func WithPriceSyncClock(now func() time.Time) PriceSyncServiceOption {
	return func(s *PriceSyncService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithPriceSyncIDGenerator overrides session and batch id generation.
func WithPriceSyncIDGenerator(gen func() string) PriceSyncServiceOption {
	return func(s *PriceSyncService) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithPriceSyncResolveDelay sets the simulated latency before committed records resolve.
func WithPriceSyncResolveDelay(delay time.Duration) PriceSyncServiceOption {
	return func(s *PriceSyncService) {
		if delay >= 0 {
			s.resolveDelay = delay
		}
	}
}

// WithPriceSyncPageSize sets the rows per page.
func WithPriceSyncPageSize(size int) PriceSyncServiceOption {
	return func(s *PriceSyncService) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// WithPriceSyncDefaultOperator sets the identity stamped when a caller supplies none.
func WithPriceSyncDefaultOperator(operator string) PriceSyncServiceOption {
	return func(s *PriceSyncService) {
		if strings.TrimSpace(operator) != "" {
			s.defaultOperator = strings.TrimSpace(operator)
		}
	}
}

// WithPriceSyncWorkers sets the resolution worker count.
func WithPriceSyncWorkers(workers int) PriceSyncServiceOption {
	return func(s *PriceSyncService) {
		if workers > 0 {
			s.workers = workers
		}
	}
}

// NewPriceSyncService constructs the service. Call Start before committing.
func NewPriceSyncService(store priceUpdateStore, logger *zap.Logger, opts ...PriceSyncServiceOption) *PriceSyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &PriceSyncService{
		store:           store,
		logger:          logger,
		validator:       validator.New(),
		now:             time.Now,
		newID:           uuid.NewString,
		resolveDelay:    1500 * time.Millisecond,
		pageSize:        10,
		defaultOperator: "admin@marketplace.local",
		workers:         1,
		sessions:        make(map[string]*sessionEntry),
	}
	for _, opt := range opts {
		opt(svc)
	}
	svc.queue = jobs.NewQueue("price-sync-resolve", svc.handleResolveJob, jobs.QueueConfig{
		Workers:    svc.workers,
		MaxRetries: 3,
		RetryDelay: 250 * time.Millisecond,
		Logger:     logger,
	})
	return svc
}

// Start launches the resolution workers. ctx bounds their lifetime.
func (s *PriceSyncService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	s.refreshBacklog(ctx)
}

// Stop cancels deferred resolutions; records still PENDING stay PENDING.
func (s *PriceSyncService) Stop() {
	dropped := s.queue.Scheduled()
	s.queue.Stop()
	for i := 0; i < dropped; i++ {
		s.metrics.RecordResolutionCancelled()
	}
	if dropped > 0 {
		s.logger.Sugar().Warnw("dropped pending price sync resolutions", "batches", dropped)
	}
}

// ResolveDelay returns the configured simulated latency.
func (s *PriceSyncService) ResolveDelay() time.Duration {
	return s.resolveDelay
}

// Operator resolves the identity to stamp, falling back to the configured default.
func (s *PriceSyncService) Operator(candidate string) string {
	if trimmed := strings.TrimSpace(candidate); trimmed != "" {
		return trimmed
	}
	return s.defaultOperator
}

// Options lists the combobox choices of the review page.
func (s *PriceSyncService) Options() dto.PriceSyncOptions {
	out := dto.PriceSyncOptions{
		Views: []dto.Option{
			dto.LabeledOption(string(models.PriceSyncViewAvailable), "Available updates"),
			dto.LabeledOption(string(models.PriceSyncViewSynced), "Synced history"),
		},
	}
	for _, d := range models.Distributors {
		out.Distributors = append(out.Distributors, dto.LabeledOption(string(d), d.Label()))
	}
	for _, st := range models.SyncedStatuses {
		out.Statuses = append(out.Statuses, dto.StringOption(string(st)))
	}
	return out
}

// GetRecord fetches a record from either collection.
func (s *PriceSyncService) GetRecord(ctx context.Context, id string) (*models.PriceUpdateRecord, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPriceUpdateNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "price update not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load price update")
	}
	return rec, nil
}

// RecordHistory returns the audit entries of a record when the audit sink is enabled.
func (s *PriceSyncService) RecordHistory(ctx context.Context, id string) ([]models.AuditLog, error) {
	if _, err := s.GetRecord(ctx, id); err != nil {
		return nil, err
	}
	if s.auditHistory == nil {
		return []models.AuditLog{}, nil
	}
	logs, err := s.auditHistory.ListByResource(ctx, models.AuditResourcePriceUpdate, id, 50)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load price update history")
	}
	return logs, nil
}

// Register records a newly detected price discrepancy as AVAILABLE.
func (s *PriceSyncService) Register(ctx context.Context, req dto.RegisterPriceUpdateRequest, operator string) (*models.PriceUpdateRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid price update payload")
	}
	distributor, ok := models.ParseDistributor(req.Distributor)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown distributor %q", req.Distributor))
	}
	current, err := decimal.NewFromString(req.CurrentPrice)
	if err != nil || !current.IsPositive() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "currentPrice must be a positive amount")
	}
	next, err := decimal.NewFromString(req.NewPrice)
	if err != nil || next.IsNegative() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "newPrice must not be negative")
	}

	rec := models.PriceUpdateRecord{
		ID:          strings.TrimSpace(req.ID),
		ProductID:   strings.TrimSpace(req.ProductID),
		ProductName: strings.TrimSpace(req.ProductName),
		Distributor: distributor,
		DetectedAt:  s.now().UTC(),
		Status:      models.PriceUpdateStatusAvailable,
	}
	if rec.ID == "" {
		rec.ID = "pu-" + s.newID()
	}
	if req.DetectedAt != nil {
		rec.DetectedAt = req.DetectedAt.UTC()
	}
	rec.SetPrices(current.Round(2), next.Round(2))

	if err := s.store.Add(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrDuplicatePriceUpdate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("price update %s already exists", rec.ID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register price update")
	}

	s.emitAudit(ctx, s.Operator(operator), models.AuditActionPriceUpdateRegister, rec.ID, nil, rec)
	s.publish(realtime.EventPriceSyncRegistered, rec)
	s.refreshBacklog(ctx)
	return &rec, nil
}

// CreateSession opens a new operator view on the requested tab.
func (s *PriceSyncService) CreateSession(ctx context.Context, req dto.CreatePriceSyncSessionRequest, operator string) (*dto.PriceSyncSessionView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	now := s.now()
	sess := pricesync.NewSession(s.newID(), s.Operator(operator), now)
	if req.View != "" {
		if err := sess.SwitchTab(models.PriceSyncView(req.View), now); err != nil {
			return nil, translatePriceSyncError(err)
		}
	}
	entry := &sessionEntry{session: sess}

	s.mu.Lock()
	s.sessions[sess.ID] = entry
	s.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return s.render(ctx, sess)
}

// GetSession renders the current page of the session's active view.
func (s *PriceSyncService) GetSession(ctx context.Context, id string) (*dto.PriceSyncSessionView, error) {
	return s.withSession(ctx, id, func(sess *pricesync.Session, now time.Time) error { return nil })
}

// CloseSession forgets a session.
func (s *PriceSyncService) CloseSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return appErrors.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Sessions reports the number of open sessions.
func (s *PriceSyncService) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// SwitchTab changes the active view and resets page, filters, selection and review.
func (s *PriceSyncService) SwitchTab(ctx context.Context, id string, req dto.SwitchPriceSyncTabRequest) (*dto.PriceSyncSessionView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid tab payload")
	}
	return s.withSession(ctx, id, func(sess *pricesync.Session, now time.Time) error {
		return sess.SwitchTab(models.PriceSyncView(req.View), now)
	})
}

// SetFilters replaces the query, distributor and status filters and returns to page one.
func (s *PriceSyncService) SetFilters(ctx context.Context, id string, req dto.UpdatePriceSyncFiltersRequest) (*dto.PriceSyncSessionView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid filter payload")
	}
	filters := pricesync.Filters{Query: req.Query}
	if req.Distributor != nil && strings.TrimSpace(req.Distributor.Value) != "" {
		d, ok := models.ParseDistributor(req.Distributor.Value)
		if !ok {
			return nil, translatePriceSyncError(pricesync.ErrInvalidDistributor)
		}
		filters.Distributor = d
	}
	if req.Status != nil && strings.TrimSpace(req.Status.Value) != "" {
		filters.Status = models.PriceUpdateStatus(strings.ToUpper(strings.TrimSpace(req.Status.Value)))
	}
	return s.withSession(ctx, id, func(sess *pricesync.Session, now time.Time) error {
		return sess.SetFilters(filters, now)
	})
}

// SetPage moves the session to page. Pages past the end clamp to the last page.
func (s *PriceSyncService) SetPage(ctx context.Context, id string, req dto.SetPriceSyncPageRequest) (*dto.PriceSyncSessionView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid page payload")
	}
	return s.withSession(ctx, id, func(sess *pricesync.Session, now time.Time) error {
		sess.SetPage(req.Page, now)
		return nil
	})
}

// ToggleSelection flips one available record in the selection.
func (s *PriceSyncService) ToggleSelection(ctx context.Context, id string, req dto.ToggleSelectionRequest) (*dto.PriceSyncSessionView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid selection payload")
	}
	return s.withAvailable(ctx, id, func(sess *pricesync.Session, available []models.PriceUpdateRecord, now time.Time) error {
		_, err := sess.Toggle(req.RecordID, available, now)
		return err
	})
}

// ToggleAll selects every record visible under the current filters, or clears when all are selected.
func (s *PriceSyncService) ToggleAll(ctx context.Context, id string) (*dto.PriceSyncSessionView, error) {
	return s.withAvailable(ctx, id, func(sess *pricesync.Session, available []models.PriceUpdateRecord, now time.Time) error {
		return sess.ToggleAll(available, now)
	})
}

// ClearSelection empties the selection.
func (s *PriceSyncService) ClearSelection(ctx context.Context, id string) (*dto.PriceSyncSessionView, error) {
	return s.withSession(ctx, id, func(sess *pricesync.Session, now time.Time) error {
		sess.ClearSelection(now)
		return nil
	})
}

// OpenReview stages a snapshot of the selected records.
func (s *PriceSyncService) OpenReview(ctx context.Context, id string) (*dto.PriceSyncSessionView, error) {
	return s.withAvailable(ctx, id, func(sess *pricesync.Session, available []models.PriceUpdateRecord, now time.Time) error {
		_, err := sess.OpenReview(available, now)
		return err
	})
}

// CancelReview closes the review and keeps the selection.
func (s *PriceSyncService) CancelReview(ctx context.Context, id string) (*dto.PriceSyncSessionView, error) {
	return s.withSession(ctx, id, func(sess *pricesync.Session, now time.Time) error {
		sess.CloseReview(now)
		return nil
	})
}

// RemoveFromReview drops a record from the review and from the selection.
func (s *PriceSyncService) RemoveFromReview(ctx context.Context, id, recordID string) (*dto.PriceSyncSessionView, error) {
	return s.withSession(ctx, id, func(sess *pricesync.Session, now time.Time) error {
		return sess.RemoveFromReview(recordID, now)
	})
}

// Commit moves the staged records to synced as PENDING and schedules their resolution.
func (s *PriceSyncService) Commit(ctx context.Context, id, operator string) (*dto.PriceSyncCommitResult, error) {
	entry, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	sess := entry.session

	if sess.Review == nil {
		return nil, appErrors.ErrReviewClosed
	}
	if sess.Review.Empty() {
		return nil, appErrors.ErrEmptyReview
	}

	who := sess.Operator
	if trimmed := strings.TrimSpace(operator); trimmed != "" {
		who = trimmed
	}
	now := s.now()
	ids := sess.Review.IDs()

	committed, err := s.store.Commit(ctx, ids, who, now.UTC())
	if err != nil {
		if errors.Is(err, repository.ErrPriceUpdateNotAvailable) {
			if available, loadErr := s.store.Available(ctx); loadErr == nil {
				sess.Prune(available)
			}
			return nil, appErrors.Wrap(err, appErrors.ErrRecordNotAvailable.Code, appErrors.ErrRecordNotAvailable.Status,
				"some staged price updates were already committed; review the list and try again")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit price updates")
	}
	sess.Committed(now)

	batchID := s.newID()
	if err := s.queue.EnqueueAfter(jobs.Job{
		ID:      batchID,
		Type:    resolveJobType,
		Payload: resolveBatch{BatchID: batchID, IDs: ids, Operator: who},
	}, s.resolveDelay); err != nil {
		s.logger.Error("failed to schedule price sync resolution", zap.String("batch_id", batchID), zap.Error(err))
	}

	s.metrics.RecordCommit(committed)
	for _, rec := range committed {
		s.emitAudit(ctx, who, models.AuditActionPriceSyncCommit, rec.ID,
			map[string]interface{}{"status": models.PriceUpdateStatusAvailable},
			map[string]interface{}{"status": rec.Status, "batchId": batchID, "newPrice": rec.NewPrice})
	}
	s.publish(realtime.EventPriceSyncCommitted, CommittedEvent{BatchID: batchID, SessionID: sess.ID, Operator: who, Records: committed})
	s.refreshBacklog(ctx)
	s.logger.Sugar().Infow("price sync batch committed",
		"batch_id", batchID,
		"session_id", sess.ID,
		"operator", who,
		"records", len(committed),
		"request_id", requestid.FromContext(ctx),
	)

	view, err := s.render(ctx, sess)
	if err != nil {
		return nil, err
	}
	return &dto.PriceSyncCommitResult{
		BatchID:      batchID,
		Committed:    committed,
		ResolveAfter: s.resolveDelay.String(),
		Session:      *view,
	}, nil
}

func (s *PriceSyncService) handleResolveJob(ctx context.Context, job jobs.Job) error {
	batch, ok := job.Payload.(resolveBatch)
	if !ok {
		s.logger.Error("unexpected resolve payload", zap.String("job_id", job.ID), zap.String("type", fmt.Sprintf("%T", job.Payload)))
		return nil
	}
	resolved, err := s.store.Resolve(ctx, batch.IDs)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("resolve batch %s: %w", batch.BatchID, err)
	}
	if len(resolved) == 0 {
		return nil
	}

	s.metrics.RecordResolved(resolved)
	for _, rec := range resolved {
		s.emitAudit(ctx, batch.Operator, models.AuditActionPriceSyncResolve, rec.ID,
			map[string]interface{}{"status": models.PriceUpdateStatusPending},
			map[string]interface{}{"status": rec.Status, "batchId": batch.BatchID})
	}
	s.publish(realtime.EventPriceSyncResolved, ResolvedEvent{BatchID: batch.BatchID, Records: resolved})
	s.refreshBacklog(ctx)
	s.logger.Sugar().Infow("price sync batch resolved", "batch_id", batch.BatchID, "records", len(resolved))
	return nil
}

// SyncedHistory returns the synced collection, optionally filtered.
func (s *PriceSyncService) SyncedHistory(ctx context.Context, filter models.PriceUpdateFilter) ([]models.PriceUpdateRecord, error) {
	synced, err := s.store.Synced(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load synced price updates")
	}
	return pricesync.Filter(synced, filter), nil
}

func (s *PriceSyncService) entry(id string) (*sessionEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[id]
	if !ok {
		return nil, appErrors.ErrSessionNotFound
	}
	return entry, nil
}

func (s *PriceSyncService) withSession(ctx context.Context, id string, fn func(*pricesync.Session, time.Time) error) (*dto.PriceSyncSessionView, error) {
	entry, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := fn(entry.session, s.now()); err != nil {
		return nil, translatePriceSyncError(err)
	}
	return s.render(ctx, entry.session)
}

func (s *PriceSyncService) withAvailable(ctx context.Context, id string, fn func(*pricesync.Session, []models.PriceUpdateRecord, time.Time) error) (*dto.PriceSyncSessionView, error) {
	entry, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	available, err := s.store.Available(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load available price updates")
	}
	entry.session.Prune(available)
	if err := fn(entry.session, available, s.now()); err != nil {
		return nil, translatePriceSyncError(err)
	}
	return s.render(ctx, entry.session)
}

// render builds the view of sess. Callers hold the session lock.
func (s *PriceSyncService) render(ctx context.Context, sess *pricesync.Session) (*dto.PriceSyncSessionView, error) {
	available, err := s.store.Available(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load available price updates")
	}
	synced, err := s.store.Synced(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load synced price updates")
	}
	sess.Prune(available)

	source := available
	if sess.View == models.PriceSyncViewSynced {
		source = synced
	}
	visible := pricesync.Filter(source, sess.Criteria())
	page := models.NewPagination(sess.Page, s.pageSize, len(visible))
	sess.Page = page.Page
	start, end := page.Bounds()

	pending := 0
	for _, rec := range synced {
		if rec.Status == models.PriceUpdateStatusPending {
			pending++
		}
	}

	view := &dto.PriceSyncSessionView{
		ID:       sess.ID,
		Operator: sess.Operator,
		View:     sess.View,
		Filters: dto.PriceSyncFilters{
			Query:       sess.Filters.Query,
			Distributor: sess.Filters.Distributor,
			Status:      sess.Filters.Status,
		},
		Records:    append([]models.PriceUpdateRecord{}, visible[start:end]...),
		Pagination: page,
		Selection:  sess.Selection.IDs(),
		Counts: dto.PriceSyncCounts{
			Available: len(available),
			Synced:    len(synced),
			Pending:   pending,
		},
		UpdatedAt: sess.UpdatedAt,
	}
	if sess.View == models.PriceSyncViewAvailable && len(visible) > 0 {
		view.AllVisibleSelected = true
		for _, rec := range visible {
			if !sess.Selection.Has(rec.ID) {
				view.AllVisibleSelected = false
				break
			}
		}
	}
	if sess.Review != nil {
		view.Review = &dto.PriceSyncReview{
			Items:     sess.Review.Items(),
			Count:     sess.Review.Len(),
			CanCommit: !sess.Review.Empty(),
		}
	}
	return view, nil
}

func (s *PriceSyncService) refreshBacklog(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	available, pending := s.store.Counts(ctx)
	s.metrics.SetPriceSyncBacklog(available, pending)
}

func (s *PriceSyncService) publish(eventType realtime.EventType, payload interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(eventType, payload); err != nil {
		s.logger.Warn("failed to publish price sync event", zap.String("event", string(eventType)), zap.Error(err))
	}
}

func (s *PriceSyncService) emitAudit(ctx context.Context, operator, action, recordID string, oldValues, newValues interface{}) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{
		OperatorID: &operator,
		Action:     action,
		Resource:   models.AuditResourcePriceUpdate,
		ResourceID: &recordID,
		IPAddress:  "system",
		UserAgent:  "price-sync-service",
	}
	if oldValues != nil {
		log.OldValues, _ = json.Marshal(oldValues)
	}
	if newValues != nil {
		log.NewValues, _ = json.Marshal(newValues)
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to write price sync audit log", zap.String("action", action), zap.String("record_id", recordID), zap.Error(err))
	}
}

var priceSyncErrors = []struct {
	err    error
	mapped *appErrors.Error
}{
	{pricesync.ErrInvalidView, appErrors.Clone(appErrors.ErrValidation, "view must be available or synced")},
	{pricesync.ErrStatusFilterUnavailable, appErrors.Clone(appErrors.ErrValidation, "status filter only applies to the synced view")},
	{pricesync.ErrInvalidDistributor, appErrors.Clone(appErrors.ErrValidation, "unknown distributor")},
	{pricesync.ErrInvalidStatus, appErrors.Clone(appErrors.ErrValidation, "status must be PENDING, SUCCESS or FAILED")},
	{pricesync.ErrSelectionReadOnly, appErrors.Clone(appErrors.ErrPreconditionFailed, "selection is only available on the available view")},
	{pricesync.ErrNotSelectable, appErrors.Clone(appErrors.ErrRecordNotAvailable, "price update is not available for selection")},
	{pricesync.ErrNothingSelected, appErrors.Clone(appErrors.ErrEmptyReview, "select at least one price update to review")},
	{pricesync.ErrReviewNotOpen, appErrors.ErrReviewClosed},
	{pricesync.ErrNotInReview, appErrors.Clone(appErrors.ErrNotFound, "price update is not in the review list")},
}

func translatePriceSyncError(err error) error {
	for _, candidate := range priceSyncErrors {
		if errors.Is(err, candidate.err) {
			return appErrors.Wrap(err, candidate.mapped.Code, candidate.mapped.Status, candidate.mapped.Message)
		}
	}
	return appErrors.FromError(err)
}
