package domain

// Tipos de evento que invalidan el ranking cacheado.
const (
	PlaceUpdated       = "place.updated"
	PlaceDeleted       = "place.deleted"
	RankingInvalidated = "ranking.invalidated"
)

const PlaceTopic = "places"

// InvalidatesRanking indica si un tipo de evento obliga a descartar el ranking.
func InvalidatesRanking(eventType string) bool {
	switch eventType {
	case PlaceUpdated, PlaceDeleted, RankingInvalidated:
		return true
	}
	return false
}
