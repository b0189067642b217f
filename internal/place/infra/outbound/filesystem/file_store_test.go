package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davicafu/toplaces/tests/contracts"
)

func TestFileStore_Contract(t *testing.T) {
	contracts.StoreContract(t, NewFileStore(filepath.Join(t.TempDir(), "store.json")))
}

func TestFileStore_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "store.json")
	store := NewFileStore(path)

	require.NoError(t, store.Set(context.Background(), "k", "v"))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestFileStore_EmptyFileIsEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, found, err := NewFileStore(path).Get(context.Background(), "k")

	assert.NoError(t, err)
	assert.False(t, found)
}

func TestFileStore_CorruptFileIsReadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o644))

	_, found, err := NewFileStore(path).Get(context.Background(), "k")

	assert.Error(t, err)
	assert.False(t, found)
}
