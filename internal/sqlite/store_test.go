package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStore(t *testing.T) {
	store := setupTestStore(t)
	assert.NotNil(t, store)
	assert.NotNil(t, store.Reports())
	assert.NotNil(t, store.RoadSegments())
}

func TestHealthCheck(t *testing.T) {
	store := setupTestStore(t)
	assert.NoError(t, store.HealthCheck(context.Background()))
}

func TestHealthCheckAfterClose(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	assert.Error(t, store.HealthCheck(context.Background()))
}

func TestSchemaIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := New(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening the same file must not fail or recreate data structures
	store, err = New(dbPath)
	require.NoError(t, err)
	defer store.Close()

	count, err := store.RoadSegments().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
