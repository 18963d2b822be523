package corpus

import "testing"

// queryHarness wires the minimum needed to exercise QueryEngine.Search
// directly against a BarrelSet, bypassing the cache layer.
type queryHarness struct {
	cfg     Config
	lexicon *Lexicon
	docs    *DocumentStore
	barrels *BarrelSet
}

func newQueryHarness(t *testing.T) *queryHarness {
	t.Helper()
	store := newTestStore(t)
	cfg := DefaultConfig()
	return &queryHarness{
		cfg:     cfg,
		lexicon: NewLexicon(store),
		docs:    NewDocumentStore(store),
		barrels: NewBarrelSet(store, cfg.NumBarrels),
	}
}

// index ingests one document directly (without the incremental worker) so
// tests can set up exact postings.
func (h *queryHarness) index(t *testing.T, docID string, fields DocumentFields) {
	t.Helper()
	if _, err := h.docs.Put(docID, DocRecord{Title: fields.Title}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	occurrences := h.cfg.TokenizeDocument(fields)
	updates := make(map[int]map[WordID][]Posting)
	perWord := make(map[WordID][]Hit)
	for _, occ := range occurrences {
		id, err := h.lexicon.Intern(occ.Token)
		if err != nil {
			t.Fatalf("Intern() error = %v", err)
		}
		perWord[id] = append(perWord[id], occ.Hit)
	}
	for wid, hits := range perWord {
		s := shard(wid, h.cfg.NumBarrels)
		if updates[s] == nil {
			updates[s] = make(map[WordID][]Posting)
		}
		updates[s][wid] = append(updates[s][wid], Posting{DocID: docID, Hits: hits})
	}
	for s, u := range updates {
		if err := h.barrels.MergeIntoShard(s, u); err != nil {
			t.Fatalf("MergeIntoShard() error = %v", err)
		}
	}
}

func (h *queryHarness) engine() *QueryEngine {
	return NewQueryEngine(h.cfg, h.barrels, h.lexicon, h.docs, nil)
}

// ═══════════════════════════════════════════════════════════════════════════════
// CONJUNCTION TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestSearch_ConjunctionAcrossTerms(t *testing.T) {
	h := newQueryHarness(t)
	h.index(t, "doc1", DocumentFields{Title: "quantum computing advances"})
	h.index(t, "doc2", DocumentFields{Title: "quantum physics basics"})

	resp, err := h.engine().Search("quantum computing", 1, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if resp.Total != 1 || resp.Hits[0].DocID != "doc1" {
		t.Fatalf("Search(\"quantum computing\") = %+v, want only doc1", resp)
	}
}

func TestSearch_NoMatchReturnsEmpty(t *testing.T) {
	h := newQueryHarness(t)
	h.index(t, "doc1", DocumentFields{Title: "quantum computing"})

	resp, err := h.engine().Search("nonexistent", 1, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if resp.Total != 0 || len(resp.Hits) != 0 {
		t.Fatalf("Search() for an unindexed term = %+v, want empty", resp)
	}
}

func TestSearch_FieldWeightingPrefersTitleOverAbstract(t *testing.T) {
	h := newQueryHarness(t)
	h.index(t, "titleDoc", DocumentFields{Title: "quantum"})
	h.index(t, "abstractDoc", DocumentFields{Abstract: "quantum entanglement discussion with quantum repeated terms quantum"})

	resp, err := h.engine().Search("quantum", 1, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(resp.Hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(resp.Hits))
	}
	if resp.Hits[0].DocID != "titleDoc" {
		t.Errorf("top hit = %q, want %q (TITLE weight %v > ABSTRACT weight %v)",
			resp.Hits[0].DocID, "titleDoc", h.cfg.FieldWeights[FieldTitle], h.cfg.FieldWeights[FieldAbstract])
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// PAGINATION TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestSearch_Pagination(t *testing.T) {
	h := newQueryHarness(t)
	for i := 0; i < 5; i++ {
		h.index(t, string(rune('a'+i)), DocumentFields{Title: "quantum"})
	}

	resp, err := h.engine().Search("quantum", 1, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(resp.Hits) != 2 {
		t.Fatalf("page 1 returned %d hits, want 2", len(resp.Hits))
	}
	if !resp.HasMore {
		t.Error("HasMore = false, want true with 5 total and limit 2")
	}
	if resp.Total != 5 {
		t.Errorf("Total = %d, want 5", resp.Total)
	}
}

func TestSearch_LastPageHasMoreFalse(t *testing.T) {
	h := newQueryHarness(t)
	for i := 0; i < 3; i++ {
		h.index(t, string(rune('a'+i)), DocumentFields{Title: "quantum"})
	}

	resp, err := h.engine().Search("quantum", 2, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(resp.Hits) != 1 {
		t.Fatalf("page 2 returned %d hits, want 1", len(resp.Hits))
	}
	if resp.HasMore {
		t.Error("HasMore = true on the last page, want false")
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	h := newQueryHarness(t)
	h.index(t, "doc1", DocumentFields{Title: "quantum"})

	resp, err := h.engine().Search("", 1, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(resp.Hits) != 0 {
		t.Errorf("Search(\"\") = %+v, want no hits", resp)
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// SEMANTIC EXPANSION TESTS
// ═══════════════════════════════════════════════════════════════════════════════

// TestSearch_SynonymMatchScoresHalfWeight exercises spec.md §4.8's S5
// scenario: querying "automobile safety" against a document that only
// contains "car" (a synonym of "automobile", never itself interned) and
// "safety" (an exact match). The synonym group must score at 0.5x the exact
// group's weight, and the proximity bonus pools both groups' hit positions.
func TestSearch_SynonymMatchScoresHalfWeight(t *testing.T) {
	h := newQueryHarness(t)
	h.index(t, "doc1", DocumentFields{Title: "car safety"})
	h.index(t, "doc2", DocumentFields{Title: "unrelated content entirely"})

	model := &SemanticModel{vectors: map[string][]float64{
		"automobile": {1, 0},
		"car":        {1, 0},
	}}
	engine := NewQueryEngine(h.cfg, h.barrels, h.lexicon, h.docs, model)

	resp, err := engine.Search("automobile safety", 1, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if resp.Total != 1 || resp.Hits[0].DocID != "doc1" {
		t.Fatalf("Search(\"automobile safety\") = %+v, want only doc1", resp)
	}

	hit := resp.Hits[0]
	if hit.MatchType != MatchSynonym {
		t.Errorf("MatchType = %q, want %q (automobile only matched via synonym)", hit.MatchType, MatchSynonym)
	}
	if hit.WordCount != 2 {
		t.Errorf("WordCount = %d, want 2", hit.WordCount)
	}

	titleWeight := h.cfg.FieldWeights[FieldTitle]
	wantBase := 0.5*titleWeight + titleWeight
	wantBonus := float64(h.cfg.MaxSpan-1) / 100
	wantScore := wantBase + wantBonus
	if hit.Score != wantScore {
		t.Errorf("Score = %v, want %v (0.5*base(automobile) + base(safety) + proximity)", hit.Score, wantScore)
	}
}

// TestSearch_ExactTermStillExpandsToSynonyms guards against the bug where a
// token that is both interned AND carries synonyms would only ever resolve
// to its own exact WordID, never unioning in the synonym postings. A doc
// containing only "car" must still surface for a query of "automobile" when
// "automobile" itself is already in the lexicon from another document.
func TestSearch_ExactTermStillExpandsToSynonyms(t *testing.T) {
	h := newQueryHarness(t)
	h.index(t, "doc1", DocumentFields{Title: "automobile enthusiasts"})
	h.index(t, "doc2", DocumentFields{Title: "car enthusiasts"})

	model := &SemanticModel{vectors: map[string][]float64{
		"automobile": {1, 0},
		"car":        {1, 0},
	}}
	engine := NewQueryEngine(h.cfg, h.barrels, h.lexicon, h.docs, model)

	resp, err := engine.Search("automobile", 1, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if resp.Total != 2 {
		t.Fatalf("Search(\"automobile\") = %+v, want both doc1 (exact) and doc2 (synonym)", resp)
	}

	byID := map[string]SearchHit{}
	for _, hit := range resp.Hits {
		byID[hit.DocID] = hit
	}
	if byID["doc1"].MatchType != MatchExact {
		t.Errorf("doc1 MatchType = %q, want %q", byID["doc1"].MatchType, MatchExact)
	}
	if byID["doc2"].MatchType != MatchSynonym {
		t.Errorf("doc2 MatchType = %q, want %q", byID["doc2"].MatchType, MatchSynonym)
	}
}
