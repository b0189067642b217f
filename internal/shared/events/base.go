package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Base de todos los eventos de integración
type IntegrationEvent struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"` // contenido específico del evento
}

// PartitionKey agrupa en la misma partición los eventos del mismo tipo.
func (e IntegrationEvent) PartitionKey() string {
	return e.Type
}

// NewIntegrationEvent construye el sobre con un ID nuevo y serializa 'data'.
func NewIntegrationEvent(eventType string, data interface{}) (IntegrationEvent, error) {
	evt := IntegrationEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
	if data == nil {
		return evt, nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return IntegrationEvent{}, err
	}
	evt.Data = raw
	return evt, nil
}
