package testsupport

import (
	"testing"

	"soundmatch/internal/config"
	"soundmatch/internal/resolvecache"
)

// MustOpenCache opens the resolution cache described by cfg and registers cleanup.
func MustOpenCache(t testing.TB, cfg *config.Config, opts ...resolvecache.Option) *resolvecache.Store {
	t.Helper()

	accepted, rejected, ranking := cfg.CacheTTLs()
	store, err := resolvecache.Open(cfg.Cache.Path, resolvecache.TTLs{
		Accepted: accepted,
		Rejected: rejected,
		Ranking:  ranking,
	}, opts...)
	if err != nil {
		t.Fatalf("resolvecache.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
