package corpus

import (
	"log/slog"
	"time"
)

// Engine is the top-level service surface (spec.md §6): it wires the
// Lexicon, DocumentStore, ForwardIndex, BarrelSet, Trie, SemanticModel,
// QueryEngine, IncrementalIndexer and CacheManager together behind five
// operations — Search, SearchBM25, Autocomplete, Status, SubmitIndex.
type Engine struct {
	cfg     Config
	store   *Store
	barrels *BarrelSet
	cache   *CacheManager
	ingest  *IncrementalIndexer
	log     *slog.Logger
}

// Open initializes an Engine rooted at a single badger directory (spec.md
// §6's persistent artifacts all live under one store). Callers must call
// Close when done.
func Open(cfg Config, dir string, log *slog.Logger) (*Engine, error) {
	if log == nil {
		log = slog.Default()
	}

	store, err := OpenStore(dir)
	if err != nil {
		return nil, err
	}

	barrels := NewBarrelSet(store, cfg.NumBarrels)

	cache, err := NewCacheManager(cfg, store, barrels)
	if err != nil {
		store.Close()
		return nil, err
	}
	if err := cache.Initialize(); err != nil {
		store.Close()
		return nil, err
	}

	forward := cache.Forward()
	ix := NewIncrementalIndexer(cfg, cache.Lexicon(), cache.Documents(), forward, barrels, log)

	e := &Engine{
		cfg:     cfg,
		store:   store,
		barrels: barrels,
		cache:   cache,
		ingest:  ix,
		log:     log,
	}

	go e.watchIngestResults()
	return e, nil
}

// watchIngestResults reloads the cache after every successful ingest job so
// subsequent Search/Autocomplete calls see the new documents (spec.md
// §4.9, §4.10). A failed job is logged and does not trigger a reload.
func (e *Engine) watchIngestResults() {
	for result := range e.ingest.Results() {
		if result.Err != nil {
			e.log.Warn("ingest job reported failure", "job", result.JobID, "error", result.Err)
			continue
		}
		if err := e.cache.Reload(); err != nil {
			e.log.Error("cache reload after ingest failed", "job", result.JobID, "error", err)
		}
	}
}

// Close releases the underlying store.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Search runs a free-text query through the field-weighted, proximity
// scored query path (spec.md §4.8).
func (e *Engine) Search(query string, page, limit int) (SearchResponse, error) {
	qe := NewQueryEngine(e.cfg, e.cache, e.cache.Lexicon(), e.cache.Documents(), e.cache.Semantic())
	return qe.Search(query, page, limit)
}

// SearchBM25 runs the same conjunction with BM25 ranking instead.
func (e *Engine) SearchBM25(query string, page, limit int, params BM25Parameters) (SearchResponse, error) {
	qe := NewQueryEngine(e.cfg, e.cache, e.cache.Lexicon(), e.cache.Documents(), e.cache.Semantic())
	stats := ComputeDocumentStats(e.cache.Forward())
	return qe.SearchBM25(query, page, limit, params, stats)
}

// Autocomplete returns completion suggestions for a partially typed query.
func (e *Engine) Autocomplete(query string) []string {
	return e.cfg.Autocomplete(e.cache.Autocomplete(), query)
}

// EngineStatus reports overall health from the cache state; it does not
// report whether an ingest job is currently in flight. LastInitialized mirrors
// Cache.LastInitialized at the top level so callers can observe an
// ingest's completion (it advances past the batch's submit time once
// watchIngestResults' Reload finishes) without reaching into Cache
// (spec.md §4.10, §6).
type EngineStatus struct {
	Cache           CacheStatus
	LastInitialized time.Time
}

// Status reports the engine's current health.
func (e *Engine) Status() EngineStatus {
	cache := e.cache.Status()
	return EngineStatus{Cache: cache, LastInitialized: cache.LastInitialized}
}

// SubmitIndex hands a batch of new documents to the incremental indexer.
// It returns the job ID immediately; indexing happens on the background
// worker, and the cache is reloaded once it completes (spec.md §4.9).
func (e *Engine) SubmitIndex(batch []IngestDocument) (string, error) {
	return e.ingest.Submit(batch)
}
