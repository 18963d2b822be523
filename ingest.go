package corpus

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// IngestDocument is one document submitted to the incremental indexer: its
// external docID, the raw text of every field, and whatever categories it
// declares (spec.md §4.9).
type IngestDocument struct {
	DocID      string
	Fields     DocumentFields
	Categories []string
}

// IngestResult is the tagged Result/Failure message the worker reports
// back once a batch finishes (spec.md §4.9, §5). Err is nil for Result,
// set for Failure; callers distinguish the two by checking Err.
type IngestResult struct {
	JobID   string
	Indexed int
	Skipped int
	Err     error
}

// IncrementalIndexer runs document ingestion on a single background
// goroutine so that Lexicon.Intern, DocumentStore.Put and
// BarrelSet.MergeIntoShard are never called concurrently from more than
// one writer (spec.md §5's single-writer discipline).
type IncrementalIndexer struct {
	cfg     Config
	lexicon *Lexicon
	docs    *DocumentStore
	forward *ForwardIndex
	barrels *BarrelSet
	log     *slog.Logger

	mu       sync.Mutex
	inFlight bool
	results  chan IngestResult
}

// NewIncrementalIndexer wires an indexer over the engine's stores.
// results is the channel Submit's worker goroutine reports completion on;
// callers should read it to know when a submitted batch has finished.
func NewIncrementalIndexer(cfg Config, lexicon *Lexicon, docs *DocumentStore, forward *ForwardIndex, barrels *BarrelSet, log *slog.Logger) *IncrementalIndexer {
	if log == nil {
		log = slog.Default()
	}
	return &IncrementalIndexer{
		cfg:     cfg,
		lexicon: lexicon,
		docs:    docs,
		forward: forward,
		barrels: barrels,
		log:     log,
		results: make(chan IngestResult, 1),
	}
}

// Results returns the channel completed jobs are reported on.
func (ix *IncrementalIndexer) Results() <-chan IngestResult {
	return ix.results
}

// Submit starts ingesting batch on a background goroutine and returns
// immediately with the job's ID. A nil or empty batch is the "entirely
// malformed payload" case and is rejected synchronously with ErrBadInput
// (spec.md §7) rather than queued. Only one job may be in flight at a
// time; a second concurrent Submit is rejected with ErrIngestInFlight
// rather than queued, so callers see backpressure instead of unbounded
// growth (spec.md §4.9, §7).
func (ix *IncrementalIndexer) Submit(batch []IngestDocument) (string, error) {
	if len(batch) == 0 {
		return "", ErrBadInput
	}

	ix.mu.Lock()
	if ix.inFlight {
		ix.mu.Unlock()
		return "", ErrIngestInFlight
	}
	ix.inFlight = true
	ix.mu.Unlock()

	jobID := uuid.NewString()
	go ix.run(jobID, batch)
	return jobID, nil
}

func (ix *IncrementalIndexer) run(jobID string, batch []IngestDocument) {
	indexed, skipped, err := ix.ingest(batch)
	result := IngestResult{JobID: jobID, Indexed: indexed, Skipped: skipped, Err: err}
	if err != nil {
		ix.log.Error("incremental ingest failed", "job", jobID, "error", err)
	} else {
		ix.log.Info("incremental ingest complete", "job", jobID, "indexed", indexed, "skipped", skipped)
	}

	// Clear inFlight before reporting, so a caller that has received this
	// result can Submit the next batch straight away.
	ix.mu.Lock()
	ix.inFlight = false
	ix.mu.Unlock()
	ix.results <- result
}

// ingest is the synchronous worker body: idempotent per docID (documents
// already present are skipped, not re-indexed), documents missing an ID
// are dropped silently rather than failing the whole batch (spec.md §4.9
// step 2, §7), dense WordID allocation via Lexicon.Intern, and one
// BarrelSet.MergeIntoShard call per shard touched by the whole batch.
func (ix *IncrementalIndexer) ingest(batch []IngestDocument) (indexed, skipped int, err error) {
	shardUpdates := make(map[int]map[WordID][]Posting)

	for _, doc := range batch {
		if doc.DocID == "" {
			skipped++
			continue
		}
		if ix.docs.Contains(doc.DocID) {
			skipped++
			continue
		}

		occurrences := ix.cfg.TokenizeDocument(doc.Fields)
		entry := make(ForwardEntry)
		for _, occ := range occurrences {
			wid, err := ix.lexicon.Intern(occ.Token)
			if err != nil {
				return indexed, skipped, err
			}
			entry[wid] = append(entry[wid], occ.Hit)
		}

		if err := ix.forward.Put(doc.DocID, entry); err != nil {
			return indexed, skipped, err
		}

		authors := doc.Fields.Authors
		if _, err := ix.docs.Put(doc.DocID, DocRecord{
			Title:      doc.Fields.Title,
			Authors:    authors,
			Categories: doc.Categories,
		}); err != nil {
			return indexed, skipped, err
		}

		for wid, hits := range entry {
			s := shard(wid, ix.cfg.NumBarrels)
			if shardUpdates[s] == nil {
				shardUpdates[s] = make(map[WordID][]Posting)
			}
			shardUpdates[s][wid] = append(shardUpdates[s][wid], Posting{DocID: doc.DocID, Hits: hits})
		}

		indexed++
	}

	for s, updates := range shardUpdates {
		if err := ix.barrels.MergeIntoShard(s, updates); err != nil {
			return indexed, skipped, err
		}
	}

	return indexed, skipped, nil
}
