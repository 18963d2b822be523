package corpus

import "errors"

// Error taxonomy for the engine. ShardMissing is deliberately absent here:
// a missing shard file is not an error, it is treated as an empty shard
// (see barrel.go).
var (
	// ErrNotInitialized is returned when a query-path operation is called
	// before the cache manager has completed its first Initialize().
	ErrNotInitialized = errors.New("corpus: engine not initialized")

	// ErrConfig signals an unreadable persistent artifact at startup. It is
	// fatal: callers should abort rather than serve from a partial state.
	ErrConfig = errors.New("corpus: configuration or artifact unreadable")

	// ErrBadInput signals a malformed ingest batch (a nil or empty batch).
	// Individual documents missing an ID are dropped silently inside the
	// worker rather than raising this error.
	ErrBadInput = errors.New("corpus: malformed ingest batch")

	// ErrWorkerFailure wraps a background indexing job that exited without
	// a prior success message. Caches are left untouched.
	ErrWorkerFailure = errors.New("corpus: incremental indexer failed")

	// ErrIngestInFlight is returned when a second batch is submitted while
	// one is already running (single-writer discipline, spec.md §4.9).
	ErrIngestInFlight = errors.New("corpus: an ingest job is already running")
)
