package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilboltonAD/marketplace-admin-api/internal/models"
	appErrors "github.com/neilboltonAD/marketplace-admin-api/pkg/errors"
)

type blobStoreStub struct {
	data   map[string][]byte
	getErr error
}

func (s *blobStoreStub) Get(ctx context.Context, key string, dest interface{}) error {
	if s.getErr != nil {
		return s.getErr
	}
	raw, ok := s.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *blobStoreStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.data[key] = raw
	return nil
}

func TestDistributorSettingsMemoryRepositoryCopies(t *testing.T) {
	repo := NewDistributorSettingsMemoryRepository()
	ctx := context.Background()

	settings := models.DistributorSettings{models.DistributorArrow: false}
	require.NoError(t, repo.Save(ctx, settings))
	settings[models.DistributorArrow] = true

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.False(t, loaded[models.DistributorArrow])
}

func TestDistributorSettingsRedisRepositoryStoresOneBlob(t *testing.T) {
	store := &blobStoreStub{data: map[string][]byte{}}
	repo := NewDistributorSettingsRedisRepository(store, "marketplace:distributor_settings")
	ctx := context.Background()

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)

	require.NoError(t, repo.Save(ctx, models.DistributorSettings{models.DistributorIngram: false, models.DistributorArrow: true}))
	assert.JSONEq(t, `{"INGRAM":false,"ARROW":true}`, string(store.data["marketplace:distributor_settings"]))

	loaded, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.False(t, loaded.Configured(models.DistributorIngram))
	assert.True(t, loaded.Configured(models.DistributorMicrosoft))
}

func TestDistributorSettingsRedisRepositoryPropagatesErrors(t *testing.T) {
	store := &blobStoreStub{data: map[string][]byte{}, getErr: errors.New("connection refused")}
	repo := NewDistributorSettingsRedisRepository(store, "k")
	_, err := repo.Load(context.Background())
	assert.Error(t, err)
}

func TestCacheRepositoryWithoutClientIsMiss(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	var dest map[string]bool
	assert.ErrorIs(t, repo.Get(context.Background(), "k", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "k", dest, 0))
	assert.NoError(t, repo.Delete(context.Background(), "k"))
	assert.NoError(t, repo.Close())
}
