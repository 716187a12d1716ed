package authclient_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authclient "github.com/goliatone/go-auth-client"
)

func TestMemoryStoreRoundtrip(t *testing.T) {
	ctx := context.Background()
	store := authclient.NewMemorySessionStore()

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	seed := validSession()
	require.NoError(t, store.Save(ctx, seed))

	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, seed, *loaded)

	require.NoError(t, store.Clear(ctx))

	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestMemoryStoreCopiesSessions(t *testing.T) {
	ctx := context.Background()
	store := authclient.NewMemorySessionStore()

	seed := validSession()
	require.NoError(t, store.Save(ctx, seed))
	seed.Token = "tampered"

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "T", loaded.Token)

	loaded.Token = "tampered-again"

	reloaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "T", reloaded.Token)
}
