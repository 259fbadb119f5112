package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/neilboltonAD/marketplace-admin-api/internal/models"
	appErrors "github.com/neilboltonAD/marketplace-admin-api/pkg/errors"
)

// DistributorSettingsMemoryRepository keeps the configured flags in process memory.
type DistributorSettingsMemoryRepository struct {
	mu       sync.RWMutex
	settings models.DistributorSettings
}

// NewDistributorSettingsMemoryRepository constructs an empty store. Missing flags read as configured.
func NewDistributorSettingsMemoryRepository() *DistributorSettingsMemoryRepository {
	return &DistributorSettingsMemoryRepository{settings: models.DistributorSettings{}}
}

// Load returns a copy of the stored flags.
func (r *DistributorSettingsMemoryRepository) Load(ctx context.Context) (models.DistributorSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings.Clone(), nil
}

// Save replaces the stored flags.
func (r *DistributorSettingsMemoryRepository) Save(ctx context.Context, settings models.DistributorSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = settings.Clone()
	return nil
}

// blobStore is the subset of CacheRepository the Redis backend needs.
type blobStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// DistributorSettingsRedisRepository keeps the flags as one JSON object under a single key.
type DistributorSettingsRedisRepository struct {
	cache blobStore
	key   string
}

// NewDistributorSettingsRedisRepository stores flags under key.
func NewDistributorSettingsRedisRepository(cache blobStore, key string) *DistributorSettingsRedisRepository {
	return &DistributorSettingsRedisRepository{cache: cache, key: key}
}

// Load reads the blob. A missing key is an empty settings map.
func (r *DistributorSettingsRedisRepository) Load(ctx context.Context) (models.DistributorSettings, error) {
	settings := models.DistributorSettings{}
	if err := r.cache.Get(ctx, r.key, &settings); err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return models.DistributorSettings{}, nil
		}
		return nil, err
	}
	return settings, nil
}

// Save overwrites the blob.
func (r *DistributorSettingsRedisRepository) Save(ctx context.Context, settings models.DistributorSettings) error {
	return r.cache.Set(ctx, r.key, settings, 0)
}
