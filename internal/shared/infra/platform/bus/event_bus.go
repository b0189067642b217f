package bus

import "context"

// Keyer lo implementan los eventos que quieren fijar su clave de partición.
type Keyer interface {
	PartitionKey() string
}

// EventBus publica eventos de integración. El topic y el formato del payload
// los decide cada adapter.
type EventBus interface {
	Publish(ctx context.Context, event interface{}) error
}
