package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/neilboltonAD/marketplace-admin-api/internal/dto"
	"github.com/neilboltonAD/marketplace-admin-api/internal/models"
	"github.com/neilboltonAD/marketplace-admin-api/internal/realtime"
	appErrors "github.com/neilboltonAD/marketplace-admin-api/pkg/errors"
)

// IntegrationsPath is where operators configure distributor credentials.
const IntegrationsPath = "/settings/integrations"

// Credential check actions, used as metric labels.
const (
	credentialActionTest = "test"
	credentialActionSave = "save"
)

type distributorSettingsStore interface {
	Load(ctx context.Context) (models.DistributorSettings, error)
	Save(ctx context.Context, settings models.DistributorSettings) error
}

// CredentialValidationError lists the credential fields that failed validation.
type CredentialValidationError struct {
	Distributor models.Distributor
	Fields      map[string]string
}

// Error implements error.
func (e *CredentialValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid %s credentials: %s", e.Distributor, strings.Join(names, ", "))
}

// Unwrap exposes the validation sentinel so response.Error renders a 400.
func (e *CredentialValidationError) Unwrap() error {
	return appErrors.Clone(appErrors.ErrValidation, "credential fields are invalid")
}

// DistributorService owns the configured flags and the simulated credential checks.
type DistributorService struct {
	store         distributorSettingsStore
	audit         auditLogger
	events        eventPublisher
	metrics       *MetricsService
	logger        *zap.Logger
	validator     *validator.Validate
	now           func() time.Time
	testDelay     time.Duration
	redirectDelay time.Duration

	mu sync.Mutex
}

// DistributorServiceOption configures the service.
type DistributorServiceOption func(*DistributorService)

// WithDistributorAudit enables the audit trail sink.
func WithDistributorAudit(audit auditLogger) DistributorServiceOption {
	return func(s *DistributorService) { s.audit = audit }
}

// WithDistributorEvents publishes settings changes.
func WithDistributorEvents(events eventPublisher) DistributorServiceOption {
	return func(s *DistributorService) { s.events = events }
}

// WithDistributorMetrics records store latency and credential checks.
func WithDistributorMetrics(metrics *MetricsService) DistributorServiceOption {
	return func(s *DistributorService) { s.metrics = metrics }
}

// WithDistributorDelays sets the simulated connection test and redirect delays.
func WithDistributorDelays(test, redirect time.Duration) DistributorServiceOption {
	return func(s *DistributorService) {
		if test >= 0 {
			s.testDelay = test
		}
		if redirect >= 0 {
			s.redirectDelay = redirect
		}
	}
}

// WithDistributorClock overrides the time source.
func WithDistributorClock(now func() time.Time) DistributorServiceOption {
	return func(s *DistributorService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewDistributorService constructs the service.
func NewDistributorService(store distributorSettingsStore, logger *zap.Logger, opts ...DistributorServiceOption) *DistributorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &DistributorService{
		store:         store,
		logger:        logger,
		validator:     validator.New(),
		now:           time.Now,
		testDelay:     800 * time.Millisecond,
		redirectDelay: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Settings returns the resolved flag of every distributor.
func (s *DistributorService) Settings(ctx context.Context) (*dto.DistributorSettingsView, error) {
	settings, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return settingsView(settings), nil
}

// UpdateSettings merge-patches the configured flags.
func (s *DistributorService) UpdateSettings(ctx context.Context, req dto.UpdateDistributorSettingsRequest, operator string) (*dto.DistributorSettingsView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid settings payload")
	}
	patch := make(models.DistributorSettings, len(req.Configured))
	for raw, configured := range req.Configured {
		d, ok := models.ParseDistributor(raw)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown distributor %q", raw))
		}
		patch[d] = configured
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	next := current.Merge(patch)
	if err := s.save(ctx, next); err != nil {
		return nil, err
	}

	s.emitAudit(ctx, operator, models.AuditActionDistributorSettings, "settings", current.Resolved(), next.Resolved())
	view := settingsView(next)
	s.publish(view)
	return view, nil
}

// AddProductTarget decides where "Add Disti Product" leads given the configured flags.
func (s *DistributorService) AddProductTarget(ctx context.Context) (*models.AddProductTarget, error) {
	settings, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	configured := settings.ConfiguredDistributors()
	target := &models.AddProductTarget{Distributors: configured}
	switch len(configured) {
	case 0:
		target.Action = models.AddProductActionRedirect
		target.RedirectTo = IntegrationsPath
		target.RedirectAfter = s.redirectDelay.String()
		target.Message = "No distributor is configured yet. Set up an integration to add distributor products."
	case 1:
		target.Action = models.AddProductActionSingle
	default:
		target.Action = models.AddProductActionChoose
	}
	return target, nil
}

// CredentialForm describes the credential inputs of a distributor.
func (s *DistributorService) CredentialForm(raw string) (*dto.DistributorCredentialForm, error) {
	d, err := parseDistributorParam(raw)
	if err != nil {
		return nil, err
	}
	return &dto.DistributorCredentialForm{Distributor: d, Label: d.Label(), Fields: models.CredentialForm(d)}, nil
}

// TestCredentials validates the form and runs the simulated connection test.
func (s *DistributorService) TestCredentials(ctx context.Context, raw string, req dto.DistributorCredentialsRequest) (*dto.DistributorCredentialsResult, error) {
	d, err := s.checkCredentials(ctx, raw, req, credentialActionTest)
	if err != nil {
		return nil, err
	}
	settings, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.DistributorCredentialsResult{
		Distributor: d,
		Success:     true,
		Message:     fmt.Sprintf("Connection to %s succeeded.", d.Label()),
		Configured:  settings.Configured(d),
		CheckedAt:   s.now().UTC(),
	}, nil
}

// SaveCredentials validates the form, runs the simulated save and marks the distributor configured.
// Credential values are not retained.
func (s *DistributorService) SaveCredentials(ctx context.Context, raw string, req dto.DistributorCredentialsRequest, operator string) (*dto.DistributorCredentialsResult, error) {
	d, err := s.checkCredentials(ctx, raw, req, credentialActionSave)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	current, err := s.load(ctx)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	next := current.Merge(models.DistributorSettings{d: true})
	err = s.save(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.emitAudit(ctx, operator, models.AuditActionDistributorCredential, string(d),
		map[string]interface{}{"configured": current.Configured(d)},
		map[string]interface{}{"configured": true, "fields": fieldNames(req.Fields)})
	s.publish(settingsView(next))
	return &dto.DistributorCredentialsResult{
		Distributor: d,
		Success:     true,
		Message:     fmt.Sprintf("%s credentials saved.", d.Label()),
		Configured:  true,
		CheckedAt:   s.now().UTC(),
	}, nil
}

func (s *DistributorService) checkCredentials(ctx context.Context, raw string, req dto.DistributorCredentialsRequest, action string) (models.Distributor, error) {
	d, err := parseDistributorParam(raw)
	if err != nil {
		return "", err
	}
	if fieldErrs := s.validateFields(d, req.Fields); len(fieldErrs) > 0 {
		s.metrics.RecordCredentialCheck(d, action, false)
		return "", &CredentialValidationError{Distributor: d, Fields: fieldErrs}
	}
	if err := sleepContext(ctx, s.testDelay); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "credential check interrupted")
	}
	s.metrics.RecordCredentialCheck(d, action, true)
	return d, nil
}

func (s *DistributorService) validateFields(d models.Distributor, values map[string]string) map[string]string {
	out := map[string]string{}
	known := map[string]struct{}{}
	for _, field := range models.CredentialForm(d) {
		known[field.Name] = struct{}{}
		if !field.Required {
			continue
		}
		if err := s.validator.Var(strings.TrimSpace(values[field.Name]), "required"); err != nil {
			out[field.Name] = fmt.Sprintf("%s is required", field.Label)
		}
	}
	for name := range values {
		if _, ok := known[name]; !ok {
			out[name] = "unknown field"
		}
	}
	return out
}

func (s *DistributorService) load(ctx context.Context) (models.DistributorSettings, error) {
	start := time.Now()
	settings, err := s.store.Load(ctx)
	s.metrics.ObserveSettingsStore("load", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load distributor settings")
	}
	return settings, nil
}

func (s *DistributorService) save(ctx context.Context, settings models.DistributorSettings) error {
	start := time.Now()
	err := s.store.Save(ctx, settings)
	s.metrics.ObserveSettingsStore("save", time.Since(start))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save distributor settings")
	}
	return nil
}

func (s *DistributorService) publish(view *dto.DistributorSettingsView) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(realtime.EventDistributorSettings, view); err != nil {
		s.logger.Warn("failed to publish distributor settings event", zap.Error(err))
	}
}

func (s *DistributorService) emitAudit(ctx context.Context, operator, action, resourceID string, oldValues, newValues interface{}) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{
		Action:     action,
		Resource:   models.AuditResourceDistributor,
		ResourceID: &resourceID,
		IPAddress:  "system",
		UserAgent:  "distributor-service",
	}
	if operator != "" {
		log.OperatorID = &operator
	}
	log.OldValues, _ = json.Marshal(oldValues)
	log.NewValues, _ = json.Marshal(newValues)
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to write distributor audit log", zap.String("action", action), zap.Error(err))
	}
}

func parseDistributorParam(raw string) (models.Distributor, error) {
	d, ok := models.ParseDistributor(raw)
	if !ok {
		return "", appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unknown distributor %q", raw))
	}
	return d, nil
}

func settingsView(settings models.DistributorSettings) *dto.DistributorSettingsView {
	return &dto.DistributorSettingsView{
		Configured: settings.Resolved(),
		Count:      len(settings.ConfiguredDistributors()),
	}
}

func fieldNames(values map[string]string) []string {
	out := make([]string, 0, len(values))
	for name := range values {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
