package corpus

import "sync"

const forwardIndexKeyPrefix = "fwd:"

// ForwardEntry maps each WordID occurring in a document to its ordered
// sequence of Hits. Non-empty iff the document was indexed (spec.md §3).
type ForwardEntry map[WordID][]Hit

// ForwardIndex keeps per-document term data (spec.md §4.4) that is available
// without touching the barrels; ComputeDocumentStats reads it for BM25
// document lengths. The core query path does not read it, and the
// incremental indexer writes barrel postings from the same entries it Puts
// here rather than rebuilding barrels from this index.
type ForwardIndex struct {
	mu      sync.RWMutex
	store   *Store
	entries map[string]ForwardEntry
}

// NewForwardIndex constructs an empty, store-backed ForwardIndex.
func NewForwardIndex(store *Store) *ForwardIndex {
	return &ForwardIndex{store: store, entries: make(map[string]ForwardEntry)}
}

// Load rebuilds the in-memory index from the Store.
func (f *ForwardIndex) Load() error {
	keys, err := f.store.Keys(forwardIndexKeyPrefix)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries = make(map[string]ForwardEntry, len(keys))
	for _, key := range keys {
		docID := key[len(forwardIndexKeyPrefix):]
		var raw map[string][]Hit
		if _, err := f.store.GetJSON(key, &raw); err != nil {
			return err
		}
		entry := make(ForwardEntry, len(raw))
		for widStr, hits := range raw {
			wid, err := parseWordID(widStr)
			if err != nil {
				continue
			}
			entry[wid] = hits
		}
		f.entries[docID] = entry
	}
	return nil
}

// Put writes a document's ForwardEntry, replacing whatever (if anything)
// was already stored under docID — in practice this is always a fresh
// write, since the incremental indexer only calls Put for new docIDs.
func (f *ForwardIndex) Put(docID string, entry ForwardEntry) error {
	raw := make(map[string][]Hit, len(entry))
	for wid, hits := range entry {
		raw[formatWordID(wid)] = hits
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.store.PutJSON(forwardIndexKeyPrefix+docID, raw); err != nil {
		return err
	}
	f.entries[docID] = entry
	return nil
}

// Get returns docID's ForwardEntry, if any.
func (f *ForwardIndex) Get(docID string) (ForwardEntry, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	entry, ok := f.entries[docID]
	return entry, ok
}
