package corpus

import (
	"sync"
)

const (
	docKeyPrefix     = "doc:"
	docOrdinalPrefix = "docord:"
)

// DocRecord is the lightweight metadata spec.md §3/§6 keeps per document:
// title, authors, categories. Never mutated after first write.
type DocRecord struct {
	Title      string   `json:"title"`
	Authors    string   `json:"authors"`
	Categories []string `json:"categories"`
}

// DocumentStore maps external docIDs (arbitrary strings, e.g. arXiv IDs) to
// DocRecord, and additionally assigns each docID a dense ordinal. The
// ordinal exists purely so BarrelSet can use roaring.Bitmap (which needs
// dense uint32 keys) for fast candidate filtering over an otherwise
// arbitrary string ID space — the same dense-allocation pattern Lexicon
// uses for WordID, applied to documents (spec.md §9).
type DocumentStore struct {
	mu        sync.RWMutex
	store     *Store
	records   map[string]DocRecord
	ordinals  map[string]uint32
	byOrdinal map[uint32]string
	nextOrd   uint32
}

// NewDocumentStore constructs an empty, store-backed DocumentStore.
func NewDocumentStore(store *Store) *DocumentStore {
	return &DocumentStore{
		store:     store,
		records:   make(map[string]DocRecord),
		ordinals:  make(map[string]uint32),
		byOrdinal: make(map[uint32]string),
	}
}

// Load rebuilds the in-memory store from the Store.
func (d *DocumentStore) Load() error {
	keys, err := d.store.Keys(docKeyPrefix)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.records = make(map[string]DocRecord, len(keys))
	d.ordinals = make(map[string]uint32, len(keys))
	d.byOrdinal = make(map[uint32]string, len(keys))
	d.nextOrd = 0

	for _, key := range keys {
		docID := key[len(docKeyPrefix):]
		var rec DocRecord
		if _, err := d.store.GetJSON(key, &rec); err != nil {
			return err
		}
		d.records[docID] = rec

		var ord uint32
		if _, err := d.store.GetJSON(docOrdinalPrefix+docID, &ord); err != nil {
			return err
		}
		d.ordinals[docID] = ord
		d.byOrdinal[ord] = docID
		if ord+1 > d.nextOrd {
			d.nextOrd = ord + 1
		}
	}

	return nil
}

// Contains is the canonical idempotence check spec.md §4.3 names.
func (d *DocumentStore) Contains(docID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.records[docID]
	return ok
}

// Get returns docID's record, if present.
func (d *DocumentStore) Get(docID string) (DocRecord, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	rec, ok := d.records[docID]
	return rec, ok
}

// Ordinal returns docID's dense ordinal, if it has been assigned one.
func (d *DocumentStore) Ordinal(docID string) (uint32, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ord, ok := d.ordinals[docID]
	return ord, ok
}

// DocIDFromOrdinal reverses Ordinal, used when translating roaring bitmap
// results back to external docIDs.
func (d *DocumentStore) DocIDFromOrdinal(ord uint32) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	docID, ok := d.byOrdinal[ord]
	return docID, ok
}

// Put writes a new document's record. Writes are append-only: a Put for a
// docID that is already stored changes nothing and returns its existing
// ordinal (the incremental indexer also checks Contains first as its
// idempotence check, spec.md §4.9 step 2).
func (d *DocumentStore) Put(docID string, rec DocRecord) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.records[docID]; exists {
		return d.ordinals[docID], nil
	}

	ord := d.nextOrd
	if err := d.store.PutJSON(docKeyPrefix+docID, rec); err != nil {
		return 0, err
	}
	if err := d.store.PutJSON(docOrdinalPrefix+docID, ord); err != nil {
		return 0, err
	}

	d.records[docID] = rec
	d.ordinals[docID] = ord
	d.byOrdinal[ord] = docID
	d.nextOrd++
	return ord, nil
}

// Size returns the number of stored documents.
func (d *DocumentStore) Size() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.records)
}
