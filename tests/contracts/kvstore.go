package contracts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davicafu/toplaces/internal/shared/infra/platform/kvstore"
)

// StoreContract verifica el comportamiento común que el caché de rankings
// espera de cualquier adaptador de kvstore.Store.
func StoreContract(t *testing.T, store kvstore.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("get de clave inexistente no es error", func(t *testing.T) {
		v, found, err := store.Get(ctx, "contract:missing")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, v)
	})

	t.Run("set y get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "contract:key", `[{"id":"a"}]`))

		v, found, err := store.Get(ctx, "contract:key")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `[{"id":"a"}]`, v)
	})

	t.Run("set sobrescribe", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "contract:overwrite", "1"))
		require.NoError(t, store.Set(ctx, "contract:overwrite", "2"))

		v, found, err := store.Get(ctx, "contract:overwrite")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "2", v)
	})

	t.Run("remove es idempotente", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "contract:remove", "x"))
		require.NoError(t, store.Remove(ctx, "contract:remove"))
		require.NoError(t, store.Remove(ctx, "contract:remove"))

		_, found, err := store.Get(ctx, "contract:remove")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("valor vacío existe", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "contract:empty", ""))

		v, found, err := store.Get(ctx, "contract:empty")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "", v)
	})
}
