package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/neilboltonAD/marketplace-admin-api/internal/models"
)

var (
	// ErrPriceUpdateNotFound is returned when no collection holds the id.
	ErrPriceUpdateNotFound = errors.New("price update not found")
	// ErrPriceUpdateNotAvailable is returned when a commit references a record that already left the available collection.
	ErrPriceUpdateNotAvailable = errors.New("price update not available")
	// ErrDuplicatePriceUpdate is returned when registering an id that already exists.
	ErrDuplicatePriceUpdate = errors.New("price update already exists")
)

// PriceUpdateRepository keeps the available and synced collections in memory.
// Returned records are copies; the synced collection is ordered most recent first.
type PriceUpdateRepository struct {
	mu        sync.RWMutex
	available []models.PriceUpdateRecord
	synced    []models.PriceUpdateRecord
	version   uint64
}

// NewPriceUpdateRepository constructs an empty store.
func NewPriceUpdateRepository() *PriceUpdateRepository {
	return &PriceUpdateRepository{}
}

// Seed replaces both collections. Records are routed by status.
func (r *PriceUpdateRepository) Seed(ctx context.Context, records []models.PriceUpdateRecord) error {
	available := make([]models.PriceUpdateRecord, 0, len(records))
	synced := make([]models.PriceUpdateRecord, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if _, dup := seen[rec.ID]; dup {
			return fmt.Errorf("seed %s: %w", rec.ID, ErrDuplicatePriceUpdate)
		}
		seen[rec.ID] = struct{}{}
		switch {
		case rec.Status == models.PriceUpdateStatusAvailable:
			available = append(available, rec.Clone())
		case rec.Status.Synced():
			synced = append(synced, rec.Clone())
		default:
			return fmt.Errorf("seed %s: unknown status %q", rec.ID, rec.Status)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.available = available
	r.synced = synced
	r.version++
	return nil
}

// Available returns the available collection in detection order.
func (r *PriceUpdateRepository) Available(ctx context.Context) ([]models.PriceUpdateRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneRecords(r.available), nil
}

// Synced returns the synced collection, most recent first.
func (r *PriceUpdateRepository) Synced(ctx context.Context) ([]models.PriceUpdateRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneRecords(r.synced), nil
}

// List returns the collection backing view.
func (r *PriceUpdateRepository) List(ctx context.Context, view models.PriceSyncView) ([]models.PriceUpdateRecord, error) {
	switch view {
	case models.PriceSyncViewAvailable:
		return r.Available(ctx)
	case models.PriceSyncViewSynced:
		return r.Synced(ctx)
	}
	return nil, fmt.Errorf("list view %q: unknown view", view)
}

// Get finds a record in either collection.
func (r *PriceUpdateRepository) Get(ctx context.Context, id string) (*models.PriceUpdateRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if idx := indexOf(r.available, id); idx >= 0 {
		rec := r.available[idx].Clone()
		return &rec, nil
	}
	if idx := indexOf(r.synced, id); idx >= 0 {
		rec := r.synced[idx].Clone()
		return &rec, nil
	}
	return nil, ErrPriceUpdateNotFound
}

// Add registers a newly detected AVAILABLE record at the end of the available collection.
func (r *PriceUpdateRepository) Add(ctx context.Context, rec models.PriceUpdateRecord) error {
	if rec.Status != models.PriceUpdateStatusAvailable {
		return fmt.Errorf("add %s: status must be %s", rec.ID, models.PriceUpdateStatusAvailable)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if indexOf(r.available, rec.ID) >= 0 || indexOf(r.synced, rec.ID) >= 0 {
		return ErrDuplicatePriceUpdate
	}
	r.available = append(r.available, rec.Clone())
	r.version++
	return nil
}

// Commit moves ids from available to the front of synced as PENDING, stamped with operator and now.
// It is all or nothing: if any id is not available nothing changes.
func (r *PriceUpdateRepository) Commit(ctx context.Context, ids []string, operator string, now time.Time) ([]models.PriceUpdateRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if indexOf(r.available, id) < 0 {
			return nil, fmt.Errorf("commit %s: %w", id, ErrPriceUpdateNotAvailable)
		}
		wanted[id] = struct{}{}
	}

	committed := make([]models.PriceUpdateRecord, 0, len(wanted))
	remaining := make([]models.PriceUpdateRecord, 0, len(r.available))
	byID := make(map[string]models.PriceUpdateRecord, len(wanted))
	for _, rec := range r.available {
		if _, ok := wanted[rec.ID]; !ok {
			remaining = append(remaining, rec)
			continue
		}
		stamp := now
		by := operator
		rec.Status = models.PriceUpdateStatusPending
		rec.UpdatedAt = &stamp
		rec.UpdatedBy = &by
		byID[rec.ID] = rec
	}
	// keep the staging order for the synced prefix
	seen := make(map[string]struct{}, len(wanted))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		committed = append(committed, byID[id])
	}

	synced := make([]models.PriceUpdateRecord, 0, len(committed)+len(r.synced))
	synced = append(synced, committed...)
	synced = append(synced, r.synced...)

	r.available = remaining
	r.synced = synced
	r.version++
	return cloneRecords(committed), nil
}

// Resolve flips ids that are still PENDING to SUCCESS and returns the records it changed.
func (r *PriceUpdateRepository) Resolve(ctx context.Context, ids []string) ([]models.PriceUpdateRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	resolved := make([]models.PriceUpdateRecord, 0, len(ids))
	for i := range r.synced {
		rec := &r.synced[i]
		if _, ok := wanted[rec.ID]; !ok || rec.Status != models.PriceUpdateStatusPending {
			continue
		}
		rec.Status = models.PriceUpdateStatusSuccess
		resolved = append(resolved, rec.Clone())
	}
	if len(resolved) > 0 {
		r.version++
	}
	return resolved, nil
}

// Counts reports collection sizes for gauges.
func (r *PriceUpdateRepository) Counts(ctx context.Context) (available, pending int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.synced {
		if rec.Status == models.PriceUpdateStatusPending {
			pending++
		}
	}
	return len(r.available), pending
}

// Version increases on every mutation so callers can tell when to refresh.
func (r *PriceUpdateRepository) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

func indexOf(records []models.PriceUpdateRecord, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneRecords(records []models.PriceUpdateRecord) []models.PriceUpdateRecord {
	out := make([]models.PriceUpdateRecord, len(records))
	for i, rec := range records {
		out[i] = rec.Clone()
	}
	return out
}
