package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	placeDomain "github.com/davicafu/toplaces/internal/place/domain"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// RankingAnalyticsRepo implementa RankingAnalyticsRepository para ClickHouse.
type RankingAnalyticsRepo struct {
	db *sql.DB
}

// NewRankingAnalyticsRepo es el constructor.
func NewRankingAnalyticsRepo(addr string, dbName string) (*RankingAnalyticsRepo, error) {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: dbName,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
	})

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping clickhouse: %w", err)
	}

	return &RankingAnalyticsRepo{db: conn}, nil
}

// NewRankingAnalyticsRepoFromDB envuelve una conexión ya abierta.
func NewRankingAnalyticsRepoFromDB(db *sql.DB) *RankingAnalyticsRepo {
	return &RankingAnalyticsRepo{db: db}
}

// LogSnapshot inserta el ranking completo en un único lote; la posición en
// el slice es el rank (1 = más popular).
func (r *RankingAnalyticsRepo) LogSnapshot(ctx context.Context, places []placeDomain.Place, fetchedAt time.Time) error {
	if len(places) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO top_places_log (place_id, name, category, popularity, rank, fetched_at)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i, p := range places {
		if _, err := stmt.ExecContext(
			ctx,
			p.ID,
			p.Name,
			string(p.Category),
			p.Popularity,
			uint16(i+1),
			fetchedAt,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to exec statement for place %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// PopularityTrend devuelve, por día, la popularidad máxima y el mejor puesto de un lugar.
func (r *RankingAnalyticsRepo) PopularityTrend(ctx context.Context, placeID string, start, end time.Time) ([]placeDomain.DailyPopularity, error) {
	query := `
		SELECT
			toStartOfDay(fetched_at) AS day,
			max(popularity) AS max_popularity,
			min(rank) AS best_rank
		FROM top_places_log
		WHERE place_id = ? AND fetched_at BETWEEN ? AND ?
		GROUP BY day
		ORDER BY day
	`
	rows, err := r.db.QueryContext(ctx, query, placeID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trend []placeDomain.DailyPopularity
	for rows.Next() {
		var (
			day      time.Time
			maxPop   int64
			bestRank uint16
		)
		if err := rows.Scan(&day, &maxPop, &bestRank); err != nil {
			return nil, err
		}
		trend = append(trend, placeDomain.DailyPopularity{
			Day:           day,
			MaxPopularity: maxPop,
			BestRank:      int(bestRank),
		})
	}
	return trend, rows.Err()
}

// InitSchema crea la tabla en ClickHouse si no existe.
func (r *RankingAnalyticsRepo) InitSchema() error {
	// Particionada por mes y ordenada por lugar para las consultas de tendencia.
	query := `
		CREATE TABLE IF NOT EXISTS top_places_log (
			place_id   String,
			name       String,
			category   LowCardinality(String),
			popularity Int64,
			rank       UInt16,
			fetched_at DateTime64(3)
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(fetched_at)
		ORDER BY (place_id, fetched_at);
	`
	_, err := r.db.Exec(query)
	return err
}

// Close cierra la conexión con ClickHouse.
func (r *RankingAnalyticsRepo) Close() error {
	return r.db.Close()
}

// Verificación estática de la interfaz.
var _ placeDomain.RankingAnalyticsRepository = (*RankingAnalyticsRepo)(nil)
