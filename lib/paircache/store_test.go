package paircache

import (
	"context"
	"testing"

	"infinite-craft/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func setup(t testing.TB) Store {
	cleanup := telemetry.SetupForTesting(t, "test:lib/paircache")
	t.Cleanup(cleanup)

	store, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestGetMiss(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "Water", "Fire")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPutGetRoundTrip(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	want := Result{Name: "Steam", Emoji: "💨", IsFirstDiscovery: false}
	require.NoError(t, store.Put(ctx, "Water", "Fire", want))

	got, ok, err := store.Get(ctx, "Water", "Fire")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, got)
}

func TestLookupIsCommutative(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	want := Result{Name: "Steam", Emoji: "💨"}
	require.NoError(t, store.Put(ctx, "Fire", "Water", want))

	got, ok, err := store.Get(ctx, "Water", "Fire")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, got)
}

func TestKeysAreCaseSensitive(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "Water", "Fire", Result{Name: "Steam", Emoji: "💨"}))

	_, ok, err := store.Get(ctx, "water", "fire")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPutOverwrites(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "Water", "Fire", Result{Name: "Steam", Emoji: "💨", IsFirstDiscovery: true}))
	require.NoError(t, store.Put(ctx, "Water", "Fire", Result{Name: "Steam", Emoji: "💨", IsFirstDiscovery: false}))

	got, ok, err := store.Get(ctx, "Water", "Fire")
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, got.IsFirstDiscovery)
}
