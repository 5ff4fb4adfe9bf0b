package commands

import (
	"context"
	"os"

	"infinite-craft/lib/configutil"
	"infinite-craft/lib/infinitecraft"
	"infinite-craft/lib/paircache"
	"infinite-craft/lib/restyutil"
	"infinite-craft/lib/serviceutil"
)

type Config struct {
	ApiUrl      string `json:"api_url"`
	RateLimit   int    `json:"rate_limit"`
	Discoveries string `json:"discoveries"`
	// path to a sqlite pair cache, empty disables caching
	PairCache string `json:"pair_cache"`
	// directory to dump request/response transcripts to, empty
	// disables dumping
	RestyDump string `json:"resty_dump"`
}

func readConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("craft.json5")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to read craft.json5", err)
	}
	return cfg
}

// openClient starts a session from the config. The returned cleanup
// closes the session and the pair cache.
func openClient(ctx context.Context, cfg Config) (*infinitecraft.Client, func()) {
	opts := infinitecraft.ClientOptions{
		BaseURL:   cfg.ApiUrl,
		RateLimit: cfg.RateLimit,
		Store:     infinitecraft.StoreOptions{Path: cfg.Discoveries},
	}
	if cfg.RestyDump != "" {
		opts.InstrumentOutput = restyutil.NewFilesystemOutput(cfg.RestyDump)
	}

	cleanupCache := func() {}
	if cfg.PairCache != "" {
		cache, err := paircache.Open(cfg.PairCache)
		if err != nil {
			serviceutil.Fatal("failed to open pair cache", err)
		}
		opts.Cache = &cache
		cleanupCache = func() { cache.Close() }
	}

	client := infinitecraft.New(opts)
	err := client.Start(ctx)
	if err != nil {
		cleanupCache()
		serviceutil.Fatal("failed to start session", err)
	}

	return client, func() {
		client.Close()
		cleanupCache()
	}
}
