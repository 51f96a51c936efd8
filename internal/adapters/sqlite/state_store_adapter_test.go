package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"houseclay-client/internal/adapters/sqlite"
)

func TestStateStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	adapter, err := sqlite.NewStateStoreAdapter(ctx, path)
	require.NoError(t, err)

	require.NoError(t, adapter.Save(ctx, "auth", []byte(`{"isAuthenticated":true}`)))
	require.NoError(t, adapter.Save(ctx, "user", []byte(`{"name":"Asha"}`)))
	require.NoError(t, adapter.Save(ctx, "auth", []byte(`{"isAuthenticated":false}`)))
	require.NoError(t, adapter.Delete(ctx, "user"))
	require.NoError(t, adapter.Delete(ctx, "missing"))
	require.NoError(t, adapter.Close())

	reopened, err := sqlite.NewStateStoreAdapter(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	state, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"auth": []byte(`{"isAuthenticated":false}`)}, state)
}
