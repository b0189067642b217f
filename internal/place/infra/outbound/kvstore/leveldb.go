package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"

	sharedKV "github.com/davicafu/toplaces/internal/shared/infra/platform/kvstore"
)

// LevelDBStore es un almacén embebido en disco, útil para despliegues de un
// solo nodo sin Redis.
type LevelDBStore struct {
	db *leveldb.DB
}

var _ sharedKV.Store = (*LevelDBStore)(nil)

// OpenLevelDBStore abre (o crea) la base de datos en 'path'.
func OpenLevelDBStore(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("could not open leveldb at %q: %w", path, err)
	}
	return &LevelDBStore{db: db}, nil
}

func (s *LevelDBStore) Get(ctx context.Context, key string) (string, bool, error) {
	b, err := s.db.Get([]byte(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("leveldb get %s: %w", key, err)
	}
	return string(b), true, nil
}

func (s *LevelDBStore) Set(ctx context.Context, key, value string) error {
	if err := s.db.Put([]byte(key), []byte(value), nil); err != nil {
		return fmt.Errorf("leveldb put %s: %w", key, err)
	}
	return nil
}

// Remove no falla si la clave no existe (leveldb.Delete es idempotente).
func (s *LevelDBStore) Remove(ctx context.Context, key string) error {
	if err := s.db.Delete([]byte(key), nil); err != nil {
		return fmt.Errorf("leveldb delete %s: %w", key, err)
	}
	return nil
}

func (s *LevelDBStore) Close() error {
	return s.db.Close()
}
