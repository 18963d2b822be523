package corpus

import "github.com/RoaringBitmap/roaring"

// QueryBuilder is a fluent boolean query builder over BarrelSet, adapted
// from the teacher's index query builder to operate on ordinal bitmaps
// instead of a single in-memory index. It supplements QueryEngine.Search
// for callers that want explicit AND/OR/NOT control instead of the
// tokenizer-driven conjunction path.
type QueryBuilder struct {
	shards ShardSource
	docs   *DocumentStore
	result *roaring.Bitmap
	err    error
}

// NewQueryBuilder starts an empty boolean query: the first Term (or Or)
// seeds the result set, every subsequent And narrows it and every Or widens
// it. A Not before any seeding term leaves an empty result.
func NewQueryBuilder(shards ShardSource, docs *DocumentStore) *QueryBuilder {
	return &QueryBuilder{shards: shards, docs: docs}
}

func (b *QueryBuilder) wordBitmap(id WordID) *roaring.Bitmap {
	postings, err := b.shards.Lookup(id)
	if err != nil {
		b.err = err
		return roaring.NewBitmap()
	}
	bm := roaring.NewBitmap()
	for _, p := range postings {
		if ord, ok := b.docs.Ordinal(p.DocID); ok {
			bm.Add(ord)
		}
	}
	return bm
}

// Term restricts the query to documents containing wordID. The first Term
// call in a chain seeds the result set.
func (b *QueryBuilder) Term(id WordID) *QueryBuilder {
	bm := b.wordBitmap(id)
	if b.result == nil {
		b.result = bm
	} else {
		b.result.And(bm)
	}
	return b
}

// And is an explicit alias for Term, for chains that read better with it
// spelled out: builder.Term(a).And(b).
func (b *QueryBuilder) And(id WordID) *QueryBuilder {
	return b.Term(id)
}

// Or widens the current result set with documents containing wordID.
func (b *QueryBuilder) Or(id WordID) *QueryBuilder {
	bm := b.wordBitmap(id)
	if b.result == nil {
		b.result = bm
	} else {
		b.result.Or(bm)
	}
	return b
}

// Not removes documents containing wordID from the current result set.
func (b *QueryBuilder) Not(id WordID) *QueryBuilder {
	bm := b.wordBitmap(id)
	if b.result == nil {
		b.result = roaring.NewBitmap()
		return b
	}
	b.result.AndNot(bm)
	return b
}

// Group applies fn to an independent sub-builder sharing the same shards
// and docs, then ANDs its result into the chain — used to parenthesize a
// sub-expression, e.g. Term(a).Group(func(g) { g.Term(b).Or(c) }).
func (b *QueryBuilder) Group(fn func(*QueryBuilder)) *QueryBuilder {
	sub := NewQueryBuilder(b.shards, b.docs)
	fn(sub)
	if sub.err != nil {
		b.err = sub.err
		return b
	}
	if sub.result == nil {
		return b
	}
	if b.result == nil {
		b.result = sub.result
	} else {
		b.result.And(sub.result)
	}
	return b
}

// Execute returns the resolved docIDs in ordinal order.
func (b *QueryBuilder) Execute() ([]string, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.result == nil {
		return nil, nil
	}
	out := make([]string, 0, b.result.GetCardinality())
	it := b.result.Iterator()
	for it.HasNext() {
		ord := it.Next()
		if docID, ok := b.docs.DocIDFromOrdinal(ord); ok {
			out = append(out, docID)
		}
	}
	return out, nil
}

// AllOf is a convenience for a pure conjunction of WordIDs.
func AllOf(shards ShardSource, docs *DocumentStore, ids ...WordID) ([]string, error) {
	b := NewQueryBuilder(shards, docs)
	for _, id := range ids {
		b.Term(id)
	}
	return b.Execute()
}

// AnyOf is a convenience for a pure disjunction of WordIDs.
func AnyOf(shards ShardSource, docs *DocumentStore, ids ...WordID) ([]string, error) {
	b := NewQueryBuilder(shards, docs)
	for i, id := range ids {
		if i == 0 {
			b.Term(id)
		} else {
			b.Or(id)
		}
	}
	return b.Execute()
}

// TermExcluding returns documents containing include but none of exclude.
func TermExcluding(shards ShardSource, docs *DocumentStore, include WordID, exclude ...WordID) ([]string, error) {
	b := NewQueryBuilder(shards, docs).Term(include)
	for _, id := range exclude {
		b.Not(id)
	}
	return b.Execute()
}
