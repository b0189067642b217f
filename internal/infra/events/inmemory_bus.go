package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	sharedBus "github.com/davicafu/toplaces/internal/shared/infra/platform/bus"
)

var ErrBusClosed = errors.New("event bus closed")

// InMemoryEventBus implementa un bus de eventos para UN solo topic.
// Sustituye a Kafka cuando USE_KAFKA=false.
type InMemoryEventBus struct {
	subscribers []chan interface{}
	mu          sync.RWMutex
	closed      bool
	once        sync.Once
	topic       string
	log         *zap.Logger
}

// Verifica en tiempo de compilación que cumple la interfaz
var _ sharedBus.EventBus = (*InMemoryEventBus)(nil)

// NewInMemoryEventBus crea un bus de eventos para un topic específico.
func NewInMemoryEventBus(topic string, log *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		subscribers: make([]chan interface{}, 0),
		topic:       topic,
		log:         log,
	}
}

// Publish serializa el evento y lo entrega como []byte a todos los suscriptores.
// Un suscriptor con el buffer lleno pierde el evento.
func (b *InMemoryEventBus) Publish(ctx context.Context, event interface{}) error {
	payloadBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}

	for _, subChan := range b.subscribers {
		select {
		case subChan <- payloadBytes:
		case <-ctx.Done():
			return ctx.Err()
		default:
			b.log.Warn("Subscriber buffer full, dropping event", zap.String("topic", b.topic))
		}
	}
	return nil
}

// Subscribe suscribe un nuevo oyente a este bus.
func (b *InMemoryEventBus) Subscribe(bufferSize int) <-chan interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	subChan := make(chan interface{}, bufferSize)
	if b.closed {
		close(subChan)
		return subChan
	}
	b.subscribers = append(b.subscribers, subChan)
	return subChan
}

// Close cierra todos los canales de suscripción. Es idempotente.
func (b *InMemoryEventBus) Close() {
	b.once.Do(func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		b.closed = true
		for _, subChan := range b.subscribers {
			close(subChan)
		}
		b.subscribers = nil
	})
}

// Topic devuelve el topic que maneja este bus.
func (b *InMemoryEventBus) Topic() string {
	return b.topic
}
