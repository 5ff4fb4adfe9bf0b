package testutil

import (
	"path/filepath"
	"testing"

	"infinite-craft/lib/paircache"
	"infinite-craft/lib/telemetry"
)

type SessionParams struct {
	Name string
	// if set, an in-memory pair cache is opened
	PairCache bool
}

type SessionResult struct {
	// a scratch discoveries path inside a per-test temp dir, the
	// file itself is not created
	DiscoveriesPath string
	Cache           *paircache.Store
}

func SetupSession(t testing.TB, params SessionParams) (SessionResult, func()) {
	cleanup := telemetry.SetupForTesting(t, "test:"+params.Name)

	out := SessionResult{
		DiscoveriesPath: filepath.Join(t.TempDir(), "discoveries.json"),
	}
	if !params.PairCache {
		return out, cleanup
	}

	cache, err := paircache.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	out.Cache = &cache
	return out, func() {
		cache.Close()
		cleanup()
	}
}
