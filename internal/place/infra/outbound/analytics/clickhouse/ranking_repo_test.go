package clickhouse

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davicafu/toplaces/tests/mocks"
)

func setupClickHouse(t *testing.T) *RankingAnalyticsRepo {
	addr := os.Getenv("CLICKHOUSE_ADDR")
	if addr == "" {
		t.Skip("CLICKHOUSE_ADDR no está configurada, saltando test de integración con ClickHouse")
	}

	repo, err := NewRankingAnalyticsRepo(addr, "default")
	require.NoError(t, err)
	require.NoError(t, repo.InitSchema())
	t.Cleanup(func() { repo.db.Close() })
	return repo
}

func TestRankingAnalyticsRepo_EmptySnapshotIsNoop(t *testing.T) {
	// Sin conexión: un ranking vacío no debe tocar la base de datos.
	repo := NewRankingAnalyticsRepoFromDB(nil)

	assert.NoError(t, repo.LogSnapshot(context.Background(), nil, time.Now()))
}

func TestRankingAnalyticsRepo_SnapshotAndTrend(t *testing.T) {
	repo := setupClickHouse(t)
	ctx := context.Background()

	places := mocks.SamplePlaces(3)
	places[0].ID = "trend-" + time.Now().Format("150405.000")
	fetchedAt := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, repo.LogSnapshot(ctx, places, fetchedAt))

	trend, err := repo.PopularityTrend(ctx, places[0].ID, fetchedAt.Add(-time.Hour), fetchedAt.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, trend, 1)
	assert.Equal(t, places[0].Popularity, trend[0].MaxPopularity)
	assert.Equal(t, 1, trend[0].BestRank)
}
