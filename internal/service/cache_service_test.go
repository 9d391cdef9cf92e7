package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenCacheRepo struct{ memCacheRepo }

func (b *brokenCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("connection reset")
}

func TestCacheServiceRoundTripAndMetrics(t *testing.T) {
	metrics := NewMetricsService()
	repo := newMemCacheRepo()
	svc := NewCacheService(repo, metrics, time.Minute, nil, true)

	var out map[string]int
	hit, err := svc.Get(context.Background(), "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(context.Background(), "k", map[string]int{"a": 1}, 0))
	hit, err = svc.Get(context.Background(), "k", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, out["a"])

	snap := metrics.Snapshot()
	assert.EqualValues(t, 1, snap.CacheHits)
	assert.EqualValues(t, 1, snap.CacheMisses)
	assert.InDelta(t, 0.5, testutil.ToFloat64(metrics.cacheHitRatio), 0.001)
}

func TestCacheServiceDisabledSkipsRepository(t *testing.T) {
	repo := newMemCacheRepo()
	svc := NewCacheService(repo, nil, 0, nil, false)

	require.NoError(t, svc.Set(context.Background(), "k", 1, 0))
	assert.Empty(t, repo.data)
	hit, err := svc.Get(context.Background(), "k", new(int))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Zero(t, repo.gets)
	assert.False(t, svc.Enabled())

	var nilSvc *CacheService
	assert.NoError(t, nilSvc.Delete(context.Background(), "k"))
}

func TestCacheServiceReportsRepositoryErrors(t *testing.T) {
	svc := NewCacheService(&brokenCacheRepo{memCacheRepo: *newMemCacheRepo()}, nil, 0, nil, true)

	hit, err := svc.Get(context.Background(), "k", new(int))
	assert.Error(t, err)
	assert.False(t, hit)
}

func TestCacheServiceInvalidateByPattern(t *testing.T) {
	repo := newMemCacheRepo()
	svc := NewCacheService(repo, nil, 0, nil, true)
	require.NoError(t, svc.Set(context.Background(), "drafts:d-1:stats", 1, 0))
	require.NoError(t, svc.Set(context.Background(), "drafts:d-2:stats", 2, 0))

	require.NoError(t, svc.Invalidate(context.Background(), "drafts:d-1:*"))

	assert.NotContains(t, repo.data, "drafts:d-1:stats")
	assert.Contains(t, repo.data, "drafts:d-2:stats")
}
