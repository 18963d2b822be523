package corpus

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheManager owns the in-memory snapshots every read path works against:
// the Lexicon, DocumentStore, autocomplete Trie and SemanticModel, plus a
// bounded LRU cache of loaded barrel shards sitting in front of BarrelSet
// (spec.md §4.10). It is the one place that knows how to go from "cold
// store on disk" to "ready to serve queries".
type CacheManager struct {
	cfg     Config
	store   *Store
	barrels *BarrelSet

	mu              sync.RWMutex
	lexicon         *Lexicon
	docs            *DocumentStore
	forward         *ForwardIndex
	trie            *Trie
	semantic        *SemanticModel
	lastInitialized time.Time

	shardCache *lru.Cache[int, map[WordID][]Posting]
}

// NewCacheManager constructs a CacheManager. Call Initialize before
// serving any reads.
func NewCacheManager(cfg Config, store *Store, barrels *BarrelSet) (*CacheManager, error) {
	shardCache, err := lru.New[int, map[WordID][]Posting](cfg.ShardCacheSize)
	if err != nil {
		return nil, err
	}
	return &CacheManager{
		cfg:        cfg,
		store:      store,
		barrels:    barrels,
		shardCache: shardCache,
	}, nil
}

// Initialize performs the cold-start load: Lexicon, DocumentStore and
// ForwardIndex from the Store, the autocomplete Trie rebuilt from the
// lexicon, and the semantic model from disk if GlovePath is configured
// (spec.md §4.10).
func (c *CacheManager) Initialize() error {
	lexicon := NewLexicon(c.store)
	if err := lexicon.Load(); err != nil {
		return err
	}
	docs := NewDocumentStore(c.store)
	if err := docs.Load(); err != nil {
		return err
	}
	forward := NewForwardIndex(c.store)
	if err := forward.Load(); err != nil {
		return err
	}
	trie := BuildTrie(lexicon.AllTokens())

	var semantic *SemanticModel
	if c.cfg.GlovePath != "" {
		model, err := LoadSemanticModel(c.cfg.GlovePath, lexicon)
		if err != nil {
			return err
		}
		semantic = model
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lexicon = lexicon
	c.docs = docs
	c.forward = forward
	c.trie = trie
	c.semantic = semantic
	c.lastInitialized = time.Now()
	c.shardCache.Purge()
	return nil
}

// Reload re-runs Initialize, swapping in fresh snapshots atomically under
// the write lock. Called after an incremental ingest batch completes so
// readers pick up the new documents (spec.md §4.9, §4.10).
func (c *CacheManager) Reload() error {
	return c.Initialize()
}

// InvalidateShards drops specific shard indices from the LRU cache,
// forcing their next Lookup to re-read from the Store. Used when an
// ingest only touched a known, small set of shards and a full Reload of
// L/D/R/S is unnecessary.
func (c *CacheManager) InvalidateShards(indices []int) {
	for _, i := range indices {
		c.shardCache.Remove(i)
	}
}

// Lexicon returns the current cached Lexicon snapshot.
func (c *CacheManager) Lexicon() *Lexicon {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lexicon
}

// Documents returns the current cached DocumentStore snapshot.
func (c *CacheManager) Documents() *DocumentStore {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.docs
}

// Forward returns the current cached ForwardIndex snapshot.
func (c *CacheManager) Forward() *ForwardIndex {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.forward
}

// Autocomplete returns the current cached Trie snapshot.
func (c *CacheManager) Autocomplete() *Trie {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.trie
}

// Semantic returns the current cached SemanticModel snapshot, nil if no
// GlovePath is configured.
func (c *CacheManager) Semantic() *SemanticModel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.semantic
}

// Lookup satisfies ShardSource: it serves a WordID's posting list from the
// LRU shard cache, loading the owning shard from BarrelSet on a miss.
func (c *CacheManager) Lookup(id WordID) ([]Posting, error) {
	i := shard(id, c.cfg.NumBarrels)

	if cached, ok := c.shardCache.Get(i); ok {
		return cached[id], nil
	}

	loaded, err := c.barrels.LoadShard(i)
	if err != nil {
		return nil, err
	}
	c.shardCache.Add(i, loaded)
	return loaded[id], nil
}

// CacheStatus reports the Cache Manager's state for status/health
// endpoints (spec.md §4.10, §6). LastInitialized advances every time
// Initialize/Reload runs, so callers can tell an ingest's cache reload
// apart from a stale snapshot by comparing it against their submit time.
type CacheStatus struct {
	Tokens          int
	Documents       int
	ShardsCached    int
	ShardCapacity   int
	SemanticLoaded  bool
	LastInitialized time.Time
}

// Status returns a CacheStatus snapshot.
func (c *CacheManager) Status() CacheStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStatus{
		Tokens:          c.lexicon.Size(),
		Documents:       c.docs.Size(),
		ShardsCached:    c.shardCache.Len(),
		ShardCapacity:   c.cfg.ShardCacheSize,
		SemanticLoaded:  c.semantic != nil,
		LastInitialized: c.lastInitialized,
	}
}
