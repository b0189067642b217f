package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Driver de PostgreSQL

	sharedKV "github.com/davicafu/toplaces/internal/shared/infra/platform/kvstore"
)

// KVStorePostgres implementa kvstore.Store sobre una tabla de PostgreSQL.
type KVStorePostgres struct {
	db *sql.DB
}

var _ sharedKV.Store = (*KVStorePostgres)(nil)

// NewKVStorePostgres es el constructor del almacén.
func NewKVStorePostgres(db *sql.DB) *KVStorePostgres {
	return &KVStorePostgres{db: db}
}

// Get recupera el valor de una clave.
func (r *KVStorePostgres) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key=$1`, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("db scan error: %w", err)
	}
	return value, true, nil
}

// Set inserta o sobrescribe el valor de una clave.
func (r *KVStorePostgres) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Remove elimina una clave; no falla si no existe.
func (r *KVStorePostgres) Remove(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key=$1`, key); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ------------------ Inicialización del Esquema ------------------

// InitPostgresKVSchema crea la tabla 'kv_store' si no existe.
func InitPostgresKVSchema(db *sql.DB) error {
	_, err := db.Exec(`
    CREATE TABLE IF NOT EXISTS kv_store (
        key TEXT PRIMARY KEY,
        value TEXT NOT NULL,
        updated_at TIMESTAMP WITH TIME ZONE NOT NULL
    )`)
	if err != nil {
		return fmt.Errorf("failed to create kv_store table: %w", err)
	}
	return nil
}
