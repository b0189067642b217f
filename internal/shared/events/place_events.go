package events

// Estos son contratos de integración, NO entidades del dominio
// Se definen planos para intercambio entre contextos.
type PlaceChanged struct {
	PlaceID string `json:"place_id"`
}

type RankingInvalidated struct {
	Reason string `json:"reason,omitempty"`
	Source string `json:"source,omitempty"`
}
