package kvstore

import (
	"context"

	"go.uber.org/zap"
)

// RemoveKeys elimina todas las claves indicadas. Los fallos se registran y se
// ignoran: devuelve cuántas claves no se pudieron eliminar.
func RemoveKeys(ctx context.Context, store Store, log *zap.Logger, keys ...string) int {
	if store == nil {
		return 0
	}

	failed := 0
	for _, key := range keys {
		if err := store.Remove(ctx, key); err != nil {
			failed++
			log.Warn("Store deletion failed",
				zap.String("key", key),
				zap.Error(err))
		}
	}
	return failed
}
