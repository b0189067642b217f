package kvstore

import (
	"context"
	"sync"

	sharedKV "github.com/davicafu/toplaces/internal/shared/infra/platform/kvstore"
)

// InMemoryStore implementa el almacén clave-valor con un mapa en memoria.
// Sirve como reserva cuando el backend configurado no está disponible.
type InMemoryStore struct {
	data map[string]string
	mu   sync.RWMutex // RWMutex permite múltiples lectores o un solo escritor.
}

// Verificación estática: asegura en tiempo de compilación que InMemoryStore implementa la interfaz compartida.
var _ sharedKV.Store = (*InMemoryStore)(nil)

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{data: make(map[string]string)}
}

func (s *InMemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	return v, ok, nil
}

func (s *InMemoryStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return nil
}

func (s *InMemoryStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}
