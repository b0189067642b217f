package bootstrap

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/toplaces/internal/config"
	placeDomain "github.com/davicafu/toplaces/internal/place/domain"
	"github.com/davicafu/toplaces/internal/place/infra/outbound/filesystem"
	"github.com/davicafu/toplaces/internal/place/infra/outbound/kvstore"
	"github.com/davicafu/toplaces/tests/mocks"
)

func TestOpenStore_Backends(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		RedisAddr:     "127.0.0.1:1", // nadie escucha aquí
		SQLitePath:    filepath.Join(dir, "cache.db"),
		LevelDBPath:   filepath.Join(dir, "cache.ldb"),
		FileStorePath: filepath.Join(dir, "cache.json"),
	}

	for _, backend := range []string{config.StoreMemory, config.StoreRedis, config.StoreSQLite, config.StoreLevelDB, config.StoreFile} {
		t.Run(backend, func(t *testing.T) {
			cfg.StoreBackend = backend
			ctx := context.Background()

			store, closeFn, err := OpenStore(ctx, cfg, zap.NewNop())
			require.NoError(t, err)
			defer closeFn()

			require.NoError(t, store.Set(ctx, "k", "v"))
			v, found, err := store.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "v", v)
		})
	}
}

func TestOpenStore_RedisFallsBackToMemory(t *testing.T) {
	cfg := &config.Config{StoreBackend: config.StoreRedis, RedisAddr: "127.0.0.1:1"}

	store, closeFn, err := OpenStore(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer closeFn()

	assert.IsType(t, &kvstore.InMemoryStore{}, store)
}

func TestOpenStore_FileBackendType(t *testing.T) {
	cfg := &config.Config{StoreBackend: config.StoreFile, FileStorePath: filepath.Join(t.TempDir(), "c.json")}

	store, _, err := OpenStore(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	assert.IsType(t, &filesystem.FileStore{}, store)
}

func TestOpenStore_Unsupported(t *testing.T) {
	_, _, err := OpenStore(context.Background(), &config.Config{StoreBackend: "etcd"}, zap.NewNop())

	assert.Error(t, err)
}

func TestOpenAnalytics_DisabledWithoutAddr(t *testing.T) {
	repo, closeFn, err := OpenAnalytics(&config.Config{}, zap.NewNop())

	require.NoError(t, err)
	assert.Nil(t, repo)
	assert.NotPanics(t, closeFn)
}

func TestRankingQuery(t *testing.T) {
	q := RankingQuery(&config.Config{PlacesCollection: "hotels", RankingField: "rating"})
	assert.Equal(t, "hotels", q.Collection)
	assert.Equal(t, "rating", q.OrderBy)
	assert.Equal(t, placeDomain.TopPlacesPayloadKey, q.PayloadKey)

	q = RankingQuery(&config.Config{})
	assert.Equal(t, placeDomain.DefaultCollection, q.Collection)
	assert.Equal(t, placeDomain.DefaultRankingField, q.OrderBy)
}

func TestNewTopPlacesCache_UsesConfiguredQuery(t *testing.T) {
	cfg := &config.Config{PlacesCollection: "hotels", RankingField: "rating", CacheSingleFlight: true}
	source := new(mocks.MockPlaceSource)
	source.On("TopN", mock.Anything, "hotels", "rating", 2).Return(mocks.SamplePlaces(2), nil).Once()

	cache := NewTopPlacesCache(cfg, source, kvstore.NewInMemoryStore(), nil, zap.NewNop())

	assert.Len(t, cache.GetTopItems(context.Background(), 2, time.Minute), 2)
	assert.Len(t, cache.GetTopItems(context.Background(), 2, time.Minute), 2)
	source.AssertExpectations(t)
}

func TestOpenStore_StrictRedisReturnsError(t *testing.T) {
	cfg := &config.Config{StoreBackend: config.StoreRedis, RedisAddr: "127.0.0.1:1"}

	store, _, err := OpenStore(context.Background(), cfg, zap.NewNop(), StrictStore())

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestOpenStore_StrictIgnoredForEmbeddedBackends(t *testing.T) {
	cfg := &config.Config{StoreBackend: config.StoreMemory}

	store, closeFn, err := OpenStore(context.Background(), cfg, zap.NewNop(), StrictStore())
	require.NoError(t, err)
	defer closeFn()

	assert.NotNil(t, store)
}
