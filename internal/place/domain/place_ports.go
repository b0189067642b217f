package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidLimit      = errors.New("limit must be a positive integer")
	ErrSourceUnavailable = errors.New("place source unavailable")
)

// Valores por defecto de la consulta del ranking.
const (
	DefaultCollection   = "places"
	DefaultRankingField = "popularity"
	DefaultTopLimit     = 10
)

// Claves del almacén local. Ningún otro componente debe escribir en ellas.
const (
	TopPlacesPayloadKey = "top_places:payload"
	TopPlacesExpiryKey  = "top_places:expires_at"
)

// ---------- Interfaces (Ports) ----------

// RankedSource devuelve hasta 'limit' registros de una colección, ordenados
// de forma descendente por 'orderBy'. Un fallo se señala con error; cero
// resultados no es un error.
type RankedSource[T any] interface {
	TopN(ctx context.Context, collection, orderBy string, limit int) ([]T, error)
}

// PlaceSource es la fuente remota concreta de lugares.
type PlaceSource = RankedSource[Place]

// DailyPopularity agrupa la popularidad máxima observada de un lugar por día.
type DailyPopularity struct {
	Day           time.Time
	MaxPopularity int64
	BestRank      int
}

// RankingAnalyticsRepository guarda instantáneas del ranking para analítica.
type RankingAnalyticsRepository interface {
	LogSnapshot(ctx context.Context, places []Place, fetchedAt time.Time) error
	PopularityTrend(ctx context.Context, placeID string, start, end time.Time) ([]DailyPopularity, error)
}
