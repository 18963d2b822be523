package corpus

import (
	"sort"
	"time"

	"github.com/RoaringBitmap/roaring"
)

// ShardSource is anything that can answer a barrel lookup for a WordID.
// BarrelSet satisfies it directly; CacheManager satisfies it by wrapping
// BarrelSet with an LRU shard cache (cache.go). QueryEngine depends on the
// interface so either can sit underneath it.
type ShardSource interface {
	Lookup(id WordID) ([]Posting, error)
}

// MatchType reports whether a result was reached through an exact term
// match on every query token, or needed semantic expansion on at least one
// (spec.md §4.8 Stage 7).
type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchSynonym MatchType = "synonym"
)

// SearchHit is one scored, document-store-enriched result.
type SearchHit struct {
	DocID      string    `json:"docId"`
	Score      float64   `json:"score"`
	MatchType  MatchType `json:"matchType"`
	WordCount  int       `json:"wordCount"`
	Title      string    `json:"title"`
	Authors    string    `json:"authors"`
	Categories []string  `json:"categories"`
}

// SearchResponse is the paginated result of a Search call (spec.md §4.8,
// §6's service surface).
type SearchResponse struct {
	Hits    []SearchHit `json:"results"`
	Total   int         `json:"totalResults"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
	HasMore bool        `json:"hasMore"`
	Tokens  []string    `json:"tokens"`
	TimeMs  int64       `json:"timeMs"`
}

// QueryEngine answers free-text search queries against a BarrelSet/cache,
// applying semantic expansion and field-weighted, proximity-boosted
// scoring (spec.md §4.8).
type QueryEngine struct {
	cfg      Config
	shards   ShardSource
	lexicon  *Lexicon
	docs     *DocumentStore
	semantic *SemanticModel // nil disables synonym expansion
}

// NewQueryEngine wires a QueryEngine. semantic may be nil.
func NewQueryEngine(cfg Config, shards ShardSource, lexicon *Lexicon, docs *DocumentStore, semantic *SemanticModel) *QueryEngine {
	return &QueryEngine{cfg: cfg, shards: shards, lexicon: lexicon, docs: docs, semantic: semantic}
}

// termGroup is spec.md §4.8 Stage 2's G_i = {t_i} ∪ find_synonyms(t_i): the
// exact token's WordID, if interned, *and* its semantic synonyms' WordIDs —
// never one in place of the other.
type termGroup struct {
	token      string
	exactID    *WordID
	synonymIDs []WordID
}

// docMatch is one group's contribution to a single candidate document:
// the Hits that satisfied it, and whether they came from the exact term
// (isExact) or had to fall back to a synonym. Exact always wins over
// synonym when a document matches both (spec.md §4.8 Stage 4).
type docMatch struct {
	hits    []Hit
	isExact bool
}

// resolvedGroup is a termGroup after its candidate documents have been
// loaded from the barrels: doc -> the single docMatch that represents it.
type resolvedGroup struct {
	candidates map[string]docMatch
}

func (q *QueryEngine) buildGroup(token string) termGroup {
	g := termGroup{token: token}
	if id, ok := q.lexicon.Lookup(token); ok {
		exact := id
		g.exactID = &exact
	}
	if q.semantic == nil {
		return g
	}
	for _, syn := range q.semantic.Synonyms(q.cfg, token) {
		if id, ok := q.lexicon.Lookup(syn); ok {
			g.synonymIDs = append(g.synonymIDs, id)
		}
	}
	return g
}

// groupCandidates resolves a termGroup to one docMatch per candidate
// document: exact-term postings always take precedence; a document is
// only attributed to synonym hits if the exact term itself didn't match it
// (spec.md §4.8 Stage 4).
func (q *QueryEngine) groupCandidates(g termGroup) (map[string]docMatch, error) {
	exact := make(map[string][]Hit)
	if g.exactID != nil {
		postings, err := q.shards.Lookup(*g.exactID)
		if err != nil {
			return nil, err
		}
		for _, p := range postings {
			exact[p.DocID] = append(exact[p.DocID], p.Hits...)
		}
	}

	synonym := make(map[string][]Hit)
	for _, id := range g.synonymIDs {
		postings, err := q.shards.Lookup(id)
		if err != nil {
			return nil, err
		}
		for _, p := range postings {
			synonym[p.DocID] = append(synonym[p.DocID], p.Hits...)
		}
	}

	candidates := make(map[string]docMatch, len(exact)+len(synonym))
	for docID, hits := range exact {
		candidates[docID] = docMatch{hits: hits, isExact: true}
	}
	for docID, hits := range synonym {
		if _, already := candidates[docID]; already {
			continue
		}
		candidates[docID] = docMatch{hits: hits, isExact: false}
	}
	return candidates, nil
}

// Search tokenizes query, expands each token into a termGroup, intersects
// groups (conjunction across terms, union within a term's synonyms),
// scores the surviving documents, enriches them from the document store,
// and returns one page of results (spec.md §4.8).
func (q *QueryEngine) Search(query string, page, limit int) (SearchResponse, error) {
	start := time.Now()
	if q.lexicon == nil || q.docs == nil {
		return SearchResponse{}, ErrNotInitialized
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	occurrences, _ := q.cfg.Tokenize(query, 0)
	if len(occurrences) == 0 {
		return SearchResponse{Page: page, Limit: limit}, nil
	}

	seen := make(map[string]struct{}, len(occurrences))
	var tokens []string
	var groups []termGroup
	for _, occ := range occurrences {
		tokens = append(tokens, occ.Token)
		if _, dup := seen[occ.Token]; dup {
			continue
		}
		seen[occ.Token] = struct{}{}
		groups = append(groups, q.buildGroup(occ.Token))
	}

	empty := func() SearchResponse {
		return SearchResponse{Page: page, Limit: limit, Tokens: tokens, TimeMs: time.Since(start).Milliseconds()}
	}

	resolved := make([]resolvedGroup, 0, len(groups))
	for _, g := range groups {
		if g.exactID == nil && len(g.synonymIDs) == 0 {
			// An unresolvable term makes the whole conjunction empty.
			return empty(), nil
		}
		cand, err := q.groupCandidates(g)
		if err != nil {
			return SearchResponse{}, err
		}
		if len(cand) == 0 {
			return empty(), nil
		}
		resolved = append(resolved, resolvedGroup{candidates: cand})
	}

	sort.Slice(resolved, func(i, j int) bool {
		return len(resolved[i].candidates) < len(resolved[j].candidates)
	})

	// Intersect ascending-size-sorted groups via roaring bitmaps over
	// document ordinals (cheapest-first conjunction, spec.md §4.8).
	var acc *roaring.Bitmap
	for _, rg := range resolved {
		bm := roaring.NewBitmap()
		for docID := range rg.candidates {
			if ord, ok := q.docs.Ordinal(docID); ok {
				bm.Add(ord)
			}
		}
		if acc == nil {
			acc = bm
		} else {
			acc.And(bm)
		}
		if acc.IsEmpty() {
			return empty(), nil
		}
	}
	if acc == nil {
		return empty(), nil
	}

	scored := make([]SearchHit, 0, acc.GetCardinality())
	it := acc.Iterator()
	for it.HasNext() {
		ord := it.Next()
		docID, ok := q.docs.DocIDFromOrdinal(ord)
		if !ok {
			continue
		}
		score, wordCount, matchType := q.cfg.scoreDocument(docID, resolved)
		rec, _ := q.docs.Get(docID)
		scored = append(scored, SearchHit{
			DocID:      docID,
			Score:      score,
			MatchType:  matchType,
			WordCount:  wordCount,
			Title:      rec.Title,
			Authors:    rec.Authors,
			Categories: rec.Categories,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].DocID < scored[j].DocID
	})

	total := len(scored)
	startIdx := (page - 1) * limit
	if startIdx > total {
		startIdx = total
	}
	endIdx := startIdx + limit
	if endIdx > total {
		endIdx = total
	}

	return SearchResponse{
		Hits:    scored[startIdx:endIdx],
		Total:   total,
		Page:    page,
		Limit:   limit,
		HasMore: endIdx < total,
		Tokens:  tokens,
		TimeMs:  time.Since(start).Milliseconds(),
	}, nil
}

// scoreDocument combines spec.md §4.8's scoring components: a
// field-weighted term score where exact matches count at full weight and
// synonym matches at half (Stage 6's `0.5·base(...)`), plus an additive
// proximity bonus pooling every matched position across all groups (Stage
// 6's `proximity(P)`). It also reports the total matched word count and
// whether every group matched exactly, for Stage 7's result metadata.
func (cfg Config) scoreDocument(docID string, groups []resolvedGroup) (score float64, wordCount int, matchType MatchType) {
	var fieldScore float64
	var positions []int
	allExact := true

	for _, g := range groups {
		dm, ok := g.candidates[docID]
		if !ok {
			continue
		}
		if !dm.isExact {
			allExact = false
		}

		var base float64
		for _, h := range dm.hits {
			base += cfg.FieldWeights[h.Field]
			positions = append(positions, h.Position)
		}
		wordCount += len(dm.hits)

		weight := 1.0
		if !dm.isExact {
			weight = 0.5
		}
		fieldScore += weight * base
	}

	matchType = MatchExact
	if !allExact {
		matchType = MatchSynonym
	}

	if len(groups) < 2 || len(positions) < 2 {
		return fieldScore, wordCount, matchType
	}

	span := proximitySpan(positions, cfg.MaxSpan)
	bonus := float64(cfg.MaxSpan-span) / 100
	if bonus < 0 {
		bonus = 0
	}
	return fieldScore + bonus, wordCount, matchType
}

// proximitySpan pools every matched position across the whole candidate
// posting list and returns its span (max - min), capped at maxSpan
// (spec.md §4.8 Stage 6).
func proximitySpan(positions []int, maxSpan int) int {
	lo, hi := positions[0], positions[0]
	for _, p := range positions[1:] {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	span := hi - lo
	if span > maxSpan {
		return maxSpan
	}
	return span
}
