package mocks

import (
	"context"
	"sync"

	"github.com/davicafu/toplaces/internal/shared/infra/platform/kvstore"
)

// DummyStore es un almacén clave-valor en memoria con inyección de fallos.
type DummyStore struct {
	data map[string]string
	mu   sync.RWMutex

	GetErr    error
	SetErr    error
	RemoveErr error

	Sets    int
	Removes int
}

var _ kvstore.Store = (*DummyStore)(nil)

func NewDummyStore() *DummyStore {
	return &DummyStore{data: make(map[string]string)}
}

func (s *DummyStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.GetErr != nil {
		return "", false, s.GetErr
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *DummyStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SetErr != nil {
		return s.SetErr
	}
	s.Sets++
	s.data[key] = value
	return nil
}

func (s *DummyStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.RemoveErr != nil {
		return s.RemoveErr
	}
	s.Removes++
	delete(s.data, key)
	return nil
}

// SetForTest inserta directamente un valor, ignorando SetErr.
func (s *DummyStore) SetForTest(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// Value devuelve el valor crudo guardado (para asserts).
func (s *DummyStore) Value(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}
