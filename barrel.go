package corpus

import (
	"fmt"
	"sync"

	"github.com/RoaringBitmap/roaring"
)

// Posting is one document's contribution to a word's posting list: its
// docID and every Hit that word produced in that document. Ordering within
// a posting list is insertion order of ingestion — the engine must not rely
// on docID sort order (spec.md §4.5).
type Posting struct {
	DocID string `json:"docId"`
	Hits  []Hit  `json:"hits"`
}

// shard computes the barrel index a WordID belongs to. This is the one
// partition function every barrel file and the query engine must agree on
// (spec.md §3); NUM_BARRELS must not change after the first build.
func shard(id WordID, numBarrels int) int {
	return int(id) % numBarrels
}

func barrelKey(i int) string {
	return fmt.Sprintf("barrel:%d", i)
}

// BarrelSet is the NUM_BARRELS-way sharded inverted index (spec.md §2,
// §4.5). Each shard maps WordID -> []Posting, restricted to WordIDs with
// wordID mod NUM_BARRELS == shardIndex. A missing shard file is treated as
// an empty shard, never an error.
type BarrelSet struct {
	mu         sync.Mutex
	store      *Store
	numBarrels int
}

// NewBarrelSet constructs a BarrelSet over store with the given partition
// width. numBarrels must match whatever width any existing barrel files on
// disk were written with.
func NewBarrelSet(store *Store, numBarrels int) *BarrelSet {
	return &BarrelSet{store: store, numBarrels: numBarrels}
}

// LoadShard reads one shard from the Store. A missing shard is not an
// error: it is returned as an empty map (spec.md §4.5, §7 "ShardMissing").
// This method performs no caching of its own — the Cache Manager owns the
// LRU layer above it (cache.go); every call here is a fresh read.
func (b *BarrelSet) LoadShard(i int) (map[WordID][]Posting, error) {
	var raw map[string][]Posting
	ok, err := b.store.GetJSON(barrelKey(i), &raw)
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[WordID][]Posting{}, nil
	}

	shardMap := make(map[WordID][]Posting, len(raw))
	for widStr, postings := range raw {
		wid, err := parseWordID(widStr)
		if err != nil {
			continue
		}
		shardMap[wid] = postings
	}
	return shardMap, nil
}

// MergeIntoShard appends newPostings into shard i's existing postings (one
// word at a time) and writes the shard back in a single transaction. This
// is the only mutating barrel operation, called exclusively from the
// incremental indexer's single-writer path (spec.md §4.9, §5).
func (b *BarrelSet) MergeIntoShard(i int, newPostings map[WordID][]Posting) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	existing, err := b.LoadShard(i)
	if err != nil {
		return err
	}

	for wid, postings := range newPostings {
		existing[wid] = append(existing[wid], postings...)
	}

	raw := make(map[string][]Posting, len(existing))
	for wid, postings := range existing {
		raw[formatWordID(wid)] = postings
	}
	return b.store.PutJSON(barrelKey(i), raw)
}

// Lookup loads the owning shard on demand and returns wordID's posting
// list, empty if absent.
func (b *BarrelSet) Lookup(id WordID) ([]Posting, error) {
	shardMap, err := b.LoadShard(shard(id, b.numBarrels))
	if err != nil {
		return nil, err
	}
	return shardMap[id], nil
}

// PostingsBitmap builds a roaring bitmap of the ordinal document IDs
// present in postings, using ds to resolve external docIDs to ordinals.
// This is the document-level fast path generalized from the teacher's
// DocBitmaps (index.go): rather than keeping a bitmap permanently in sync
// with every merge, it is derived on demand from whatever postings the
// query engine already loaded, which is cheap (one pass, no extra I/O) and
// never goes stale.
func PostingsBitmap(postings []Posting, ds *DocumentStore) *roaring.Bitmap {
	bm := roaring.NewBitmap()
	for _, p := range postings {
		if ord, ok := ds.Ordinal(p.DocID); ok {
			bm.Add(ord)
		}
	}
	return bm
}
