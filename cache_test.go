package corpus

import (
	"testing"
	"time"
)

func newCacheFixture(t *testing.T) (*CacheManager, *Store) {
	t.Helper()
	store := newTestStore(t)
	cfg := DefaultConfig()
	cfg.GlovePath = "" // semantic model disabled unless a test opts in
	barrels := NewBarrelSet(store, cfg.NumBarrels)

	// Seed the store directly, as if a previous ingest had already run.
	lexicon := NewLexicon(store)
	id, err := lexicon.Intern("quantum")
	if err != nil {
		t.Fatalf("Intern() error = %v", err)
	}
	docs := NewDocumentStore(store)
	if _, err := docs.Put("doc1", DocRecord{Title: "quantum"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := barrels.MergeIntoShard(shard(id, cfg.NumBarrels), map[WordID][]Posting{
		id: {{DocID: "doc1", Hits: []Hit{{Position: 0, Field: FieldTitle}}}},
	}); err != nil {
		t.Fatalf("MergeIntoShard() error = %v", err)
	}

	cache, err := NewCacheManager(cfg, store, barrels)
	if err != nil {
		t.Fatalf("NewCacheManager() error = %v", err)
	}
	return cache, store
}

// ═══════════════════════════════════════════════════════════════════════════════
// INITIALIZE / RELOAD TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestCacheManager_Initialize_LoadsSnapshots(t *testing.T) {
	cache, _ := newCacheFixture(t)
	if err := cache.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if cache.Lexicon().Size() != 1 {
		t.Errorf("Lexicon().Size() = %d, want 1", cache.Lexicon().Size())
	}
	if cache.Documents().Size() != 1 {
		t.Errorf("Documents().Size() = %d, want 1", cache.Documents().Size())
	}
	if cache.Semantic() != nil {
		t.Error("Semantic() != nil with no GlovePath configured")
	}
}

func TestCacheManager_Lookup_ServesFromLRUAfterFirstLoad(t *testing.T) {
	cache, _ := newCacheFixture(t)
	if err := cache.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	id, ok := cache.Lexicon().Lookup("quantum")
	if !ok {
		t.Fatal("\"quantum\" not found in cached lexicon")
	}

	postings, err := cache.Lookup(id)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("Lookup() = %v, want one posting", postings)
	}

	status := cache.Status()
	if status.ShardsCached != 1 {
		t.Errorf("ShardsCached = %d, want 1 after one Lookup()", status.ShardsCached)
	}
}

func TestCacheManager_InvalidateShards_ForcesReload(t *testing.T) {
	cache, _ := newCacheFixture(t)
	if err := cache.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	id, _ := cache.Lexicon().Lookup("quantum")
	if _, err := cache.Lookup(id); err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}

	cache.InvalidateShards([]int{shard(id, cache.cfg.NumBarrels)})

	status := cache.Status()
	if status.ShardsCached != 0 {
		t.Errorf("ShardsCached = %d after InvalidateShards(), want 0", status.ShardsCached)
	}
}

func TestCacheManager_Status_ReportsCapacity(t *testing.T) {
	cache, _ := newCacheFixture(t)
	if err := cache.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	status := cache.Status()
	if status.ShardCapacity != cache.cfg.ShardCacheSize {
		t.Errorf("ShardCapacity = %d, want %d", status.ShardCapacity, cache.cfg.ShardCacheSize)
	}
}

func TestCacheManager_Status_LastInitializedAdvancesPastSubmitTime(t *testing.T) {
	cache, _ := newCacheFixture(t)
	if err := cache.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	submitTime := time.Now()
	time.Sleep(time.Millisecond)
	if err := cache.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	status := cache.Status()
	if !status.LastInitialized.After(submitTime) {
		t.Errorf("LastInitialized = %v, want after submit time %v", status.LastInitialized, submitTime)
	}
}
