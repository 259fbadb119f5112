package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/neilboltonAD/marketplace-admin-api/internal/models"
	appErrors "github.com/neilboltonAD/marketplace-admin-api/pkg/errors"
)

func TestCacheRepositoryWithoutClientMisses(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	assert.NoError(t, repo.Set(ctx, "k", map[string]bool{"INGRAM": true}, 0))
	var dest map[string]bool
	assert.ErrorIs(t, repo.Get(ctx, "k", &dest), appErrors.ErrCacheMiss)
	assert.Error(t, repo.Ping(ctx))
	assert.NoError(t, repo.Close())

	settings, err := NewDistributorSettingsRedisRepository(repo, "settings").Load(ctx)
	assert.NoError(t, err)
	assert.Equal(t, models.DistributorSettings{}, settings)
}

func TestCacheRepositoryWrapsTransportErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
	repo := NewCacheRepository(client, nil)
	t.Cleanup(func() { _ = repo.Close() })
	ctx := context.Background()

	var dest map[string]bool
	err := repo.Get(ctx, "settings", &dest)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.Contains(t, err.Error(), "redis get settings")

	assert.ErrorContains(t, repo.Set(ctx, "settings", dest, 0), "redis set settings")
	assert.Error(t, repo.Ping(ctx))
}
