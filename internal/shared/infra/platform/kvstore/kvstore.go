package kvstore

import (
	"context"
)

// Store define la interfaz de un almacén persistente de clave-valor (strings).
type Store interface {
	// Get devuelve (valor, true, nil) si la 'key' existe.
	// Devuelve ("", false, nil) si no existe. Un error nunca significa "no existe".
	Get(ctx context.Context, key string) (string, bool, error)

	// Set guarda (sobrescribe) el valor de la 'key'.
	Set(ctx context.Context, key, value string) error

	// Remove elimina la 'key'. Eliminar una clave inexistente no es un error.
	Remove(ctx context.Context, key string) error
}
