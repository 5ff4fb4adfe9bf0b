package infinitecraft

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"infinite-craft/lib/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func setupStore(t testing.TB) *Store {
	env, cleanup := testutil.SetupSession(t, testutil.SessionParams{Name: "lib/infinitecraft"})
	t.Cleanup(cleanup)

	store, err := OpenStore(StoreOptions{Path: env.DiscoveriesPath})
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestOpenCreatesDefaults(t *testing.T) {
	store := setupStore(t)

	require.Equal(t, 4, store.Len())

	onDisk, err := store.Discoveries(DiscoveriesOptions{})
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(Defaults(), onDisk))
}

func TestDiscoveryIsCaseSensitive(t *testing.T) {
	store := setupStore(t)

	fire, ok := store.Discovery("Fire")
	require.True(t, ok)
	require.Equal(t, "Fire", fire.Name)
	require.Equal(t, "🔥", fire.Emoji)

	_, ok = store.Discovery("fire")
	require.False(t, ok)
}

func TestAddAppendsAndPersists(t *testing.T) {
	store := setupStore(t)

	added, err := store.Add(Element{Name: "Steam", Emoji: "💨"})
	require.NoError(t, err)
	require.True(t, added)
	require.Equal(t, 5, store.Len())

	// a second store on the same path sees the write
	reopened, err := OpenStore(StoreOptions{Path: store.Path()})
	require.NoError(t, err)
	steam, ok := reopened.Discovery("Steam")
	require.True(t, ok)
	require.Equal(t, "💨", steam.Emoji)
}

func TestAddIgnoresDuplicatesAndSentinel(t *testing.T) {
	store := setupStore(t)

	added, err := store.Add(Element{Name: "Fire", Emoji: "❤️‍🔥"})
	require.NoError(t, err)
	require.False(t, added)

	added, err = store.Add(Element{})
	require.NoError(t, err)
	require.False(t, added)

	require.Equal(t, 4, store.Len())
}

func TestResetRestoresExactlyDefaults(t *testing.T) {
	store := setupStore(t)

	_, err := store.Add(Element{Name: "Steam", Emoji: "💨"})
	require.NoError(t, err)

	require.NoError(t, store.Reset())

	elements, err := store.Discoveries(DiscoveriesOptions{})
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(Defaults(), elements))
}

func TestDiscoveriesReloadsExternalEdits(t *testing.T) {
	store := setupStore(t)

	// another process rewrites the file out from under us
	edited := append(Defaults(), Element{Name: "Lava", Emoji: "🌋"})
	contents, err := json.MarshalIndent(edited, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path(), contents, 0644))

	// without SetValue the memory list is untouched
	elements, err := store.Discoveries(DiscoveriesOptions{})
	require.NoError(t, err)
	require.Len(t, elements, 5)
	_, ok := store.Discovery("Lava")
	require.False(t, ok)

	_, err = store.Discoveries(DiscoveriesOptions{SetValue: true})
	require.NoError(t, err)
	_, ok = store.Discovery("Lava")
	require.True(t, ok)
}

func TestDiscoveryOnDiskSeesExternalEdits(t *testing.T) {
	store := setupStore(t)

	edited := append(Defaults(), Element{Name: "Lava", Emoji: "🌋"})
	contents, err := json.MarshalIndent(edited, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path(), contents, 0644))

	_, ok := store.Discovery("Lava")
	require.False(t, ok)

	lava, ok, err := store.DiscoveryOnDisk("Lava")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "🌋", lava.Emoji)

	_, ok, err = store.DiscoveryOnDisk("lava")
	require.NoError(t, err)
	require.False(t, ok, "lookup stays case sensitive")
}

func TestDiscoveriesCheckFilters(t *testing.T) {
	store := setupStore(t)

	elements, err := store.Discoveries(DiscoveriesOptions{
		Check: func(e Element) bool { return e.Name == "Wind" },
	})
	require.NoError(t, err)
	require.Len(t, elements, 1)
	require.Equal(t, "Wind", elements[0].Name)
}

func TestFileFormat(t *testing.T) {
	store := setupStore(t)

	contents, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(contents, &raw))
	require.Len(t, raw, 4)
	require.Equal(t, "Water", raw[0]["name"])
	require.Equal(t, "💧", raw[0]["emoji"])
	require.Equal(t, false, raw[0]["isFirstDiscovery"])
}

func TestSearchRanksClosestName(t *testing.T) {
	store := setupStore(t)

	results := store.Search("watr", 2)
	require.Len(t, results, 2)
	require.Equal(t, "Water", results[0].Name)
}

func TestOpenMissingParentDir(t *testing.T) {
	env, cleanup := testutil.SetupSession(t, testutil.SessionParams{Name: "lib/infinitecraft"})
	t.Cleanup(cleanup)

	nested := filepath.Join(filepath.Dir(env.DiscoveriesPath), "deep", "discoveries.json")
	store, err := OpenStore(StoreOptions{Path: nested})
	require.NoError(t, err)
	require.Equal(t, 4, store.Len())
}
