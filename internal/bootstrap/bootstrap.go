// Package bootstrap construye los adaptadores a partir de la configuración.
// Lo comparten el servidor y la CLI.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/davicafu/toplaces/internal/config"
	"github.com/davicafu/toplaces/internal/place/application"
	placeDomain "github.com/davicafu/toplaces/internal/place/domain"
	"github.com/davicafu/toplaces/internal/place/infra/outbound/analytics/clickhouse"
	"github.com/davicafu/toplaces/internal/place/infra/outbound/db/mongodb"
	postgres "github.com/davicafu/toplaces/internal/place/infra/outbound/db/postgre"
	"github.com/davicafu/toplaces/internal/place/infra/outbound/db/sqlite"
	"github.com/davicafu/toplaces/internal/place/infra/outbound/filesystem"
	"github.com/davicafu/toplaces/internal/place/infra/outbound/kvstore"
	sharedKV "github.com/davicafu/toplaces/internal/shared/infra/platform/kvstore"
	sharedUtils "github.com/davicafu/toplaces/internal/shared/infra/utils"
)

const redisKeyPrefix = "toplaces:"

func noop() {}

// StoreOption ajusta el comportamiento de OpenStore.
type StoreOption func(*storeOptions)

type storeOptions struct {
	strict bool
}

// StrictStore desactiva el fallback a memoria: si el backend configurado no
// responde, OpenStore devuelve el error. Lo usan los comandos de operación,
// que no tienen sentido contra un almacén vacío y efímero.
func StrictStore() StoreOption {
	return func(o *storeOptions) { o.strict = true }
}

// OpenStore abre el almacén local elegido en STORE_BACKEND. Si Redis no
// responde se usa un almacén en memoria, salvo con StrictStore. La función
// devuelta libera recursos.
func OpenStore(ctx context.Context, cfg *config.Config, log *zap.Logger, opts ...StoreOption) (sharedKV.Store, func(), error) {
	var o storeOptions
	for _, opt := range opts {
		opt(&o)
	}

	switch cfg.StoreBackend {
	case config.StoreMemory:
		log.Info("Using in-memory store")
		return kvstore.NewInMemoryStore(), noop, nil

	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:        cfg.RedisAddr,
			DialTimeout: 2 * time.Second,
			MaxRetries:  -1,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			if o.strict {
				_ = rdb.Close()
				return nil, nil, fmt.Errorf("redis unavailable at %s: %w", cfg.RedisAddr, err)
			}
			log.Warn("Redis unavailable, falling back to in-memory store",
				zap.String("addr", cfg.RedisAddr), zap.Error(err))
			_ = rdb.Close()
			return kvstore.NewInMemoryStore(), noop, nil
		}
		log.Info("Redis connected", zap.String("addr", cfg.RedisAddr))
		return kvstore.NewRedisStore(rdb, redisKeyPrefix), func() { _ = rdb.Close() }, nil

	case config.StoreSQLite:
		db, err := sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open SQLite: %w", err)
		}
		// SQLite solo admite un escritor.
		db.SetMaxOpenConns(1)
		if err := sqlite.InitSQLite(db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to initialize SQLite: %w", err)
		}
		log.Info("Using SQLite store", zap.String("path", cfg.SQLitePath))
		return sqlite.NewKVStoreSQLite(db), func() { _ = db.Close() }, nil

	case config.StorePostgres:
		db, err := sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open Postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to ping Postgres: %w", err)
		}
		if err := postgres.InitPostgresKVSchema(db); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Info("Using Postgres store")
		return postgres.NewKVStorePostgres(db), func() { _ = db.Close() }, nil

	case config.StoreLevelDB:
		store, err := kvstore.OpenLevelDBStore(cfg.LevelDBPath)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Using LevelDB store", zap.String("path", cfg.LevelDBPath))
		return store, func() { _ = store.Close() }, nil

	case config.StoreFile:
		log.Info("Using JSON file store", zap.String("path", cfg.FileStorePath))
		return filesystem.NewFileStore(cfg.FileStorePath), noop, nil
	}

	return nil, nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
}

// OpenPlaceSource conecta con MongoDB. Un ping fallido solo se registra: el
// caché sirve el último ranking conocido mientras la fuente no responda.
func OpenPlaceSource(ctx context.Context, cfg *config.Config, log *zap.Logger) (*mongodb.PlaceSourceMongoDB, func(), error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerSelectionTimeout(3*time.Second))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	source := mongodb.NewPlaceSourceMongoDB(client, cfg.MongoDB)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := source.Ping(pingCtx); err != nil {
		log.Warn("MongoDB not reachable yet, serving cached rankings only", zap.Error(err))
	} else {
		log.Info("MongoDB connected", zap.String("db", cfg.MongoDB))
	}

	closer := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}
	return source, closer, nil
}

// OpenAnalytics abre el repositorio de ClickHouse si CLICKHOUSE_ADDR está
// definido; si no, devuelve nil sin error.
func OpenAnalytics(cfg *config.Config, log *zap.Logger) (placeDomain.RankingAnalyticsRepository, func(), error) {
	if cfg.ClickHouseAddr == "" {
		return nil, noop, nil
	}

	repo, err := clickhouse.NewRankingAnalyticsRepo(cfg.ClickHouseAddr, cfg.ClickHouseDB)
	if err != nil {
		return nil, nil, err
	}
	if err := repo.InitSchema(); err != nil {
		repo.Close()
		return nil, nil, fmt.Errorf("failed to init clickhouse schema: %w", err)
	}
	log.Info("ClickHouse ranking analytics enabled", zap.String("addr", cfg.ClickHouseAddr))
	return repo, func() { _ = repo.Close() }, nil
}

// RankingQuery traduce la configuración a la consulta del ranking.
func RankingQuery(cfg *config.Config) application.RankingQuery {
	q := application.DefaultPlacesQuery()
	q.Collection = sharedUtils.Ternary(cfg.PlacesCollection != "", cfg.PlacesCollection, q.Collection)
	q.OrderBy = sharedUtils.Ternary(cfg.RankingField != "", cfg.RankingField, q.OrderBy)
	return q
}

// NewTopPlacesCache monta el caché del ranking y, si hay repositorio de
// analítica, engancha el registro de instantáneas.
func NewTopPlacesCache(
	cfg *config.Config,
	source placeDomain.PlaceSource,
	store sharedKV.Store,
	analytics placeDomain.RankingAnalyticsRepository,
	log *zap.Logger,
) *application.RankedListCache[placeDomain.Place] {
	var opts []application.Option
	if cfg.CacheSingleFlight {
		opts = append(opts, application.WithSingleFlight())
	}

	cache := application.NewRankedListCache[placeDomain.Place](source, store, RankingQuery(cfg), log, opts...)
	if analytics != nil {
		cache.OnRefresh(application.SnapshotHook(analytics, log, time.Now))
	}
	return cache
}
