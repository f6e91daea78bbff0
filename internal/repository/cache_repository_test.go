package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type cacheMetricsSpy struct {
	hits   int
	misses int
}

func (s *cacheMetricsSpy) RecordCacheOperation(hit bool) {
	if hit {
		s.hits++
		return
	}
	s.misses++
}

func TestCacheRepositoryNilClientRecordsMiss(t *testing.T) {
	spy := &cacheMetricsSpy{}
	repo := NewCacheRepository(nil, spy, zap.NewNop())

	var dest string
	err := repo.Get(context.Background(), "latest-session", &dest)
	require.ErrorIs(t, err, appErrors.ErrCacheMiss)
	require.Equal(t, 1, spy.misses)
	require.Equal(t, 0, spy.hits)

	// Set and Delete degrade to no-ops without a client.
	require.NoError(t, repo.Set(context.Background(), "latest-session", "sess-1", 0))
	require.NoError(t, repo.Delete(context.Background(), "latest-session"))
}

func TestCacheRepositoryNilMetrics(t *testing.T) {
	repo := NewCacheRepository(nil, nil, zap.NewNop())

	var dest string
	err := repo.Get(context.Background(), "latest-session", &dest)
	require.ErrorIs(t, err, appErrors.ErrCacheMiss)
}
