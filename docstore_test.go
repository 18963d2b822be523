package corpus

import "testing"

// ═══════════════════════════════════════════════════════════════════════════════
// PUT / ORDINAL TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestDocumentStore_Put_AssignsOrdinalsInInsertionOrder(t *testing.T) {
	ds := NewDocumentStore(newTestStore(t))

	ord1, err := ds.Put("arxiv:0001", DocRecord{Title: "A"})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	ord2, err := ds.Put("arxiv:0002", DocRecord{Title: "B"})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if ord1 != 0 || ord2 != 1 {
		t.Errorf("ordinals = (%d, %d), want (0, 1)", ord1, ord2)
	}
}

func TestDocumentStore_Put_IsIdempotent(t *testing.T) {
	ds := NewDocumentStore(newTestStore(t))

	first, err := ds.Put("arxiv:0001", DocRecord{Title: "A"})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	second, err := ds.Put("arxiv:0001", DocRecord{Title: "A changed"})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if first != second {
		t.Errorf("re-Put() returned ordinal %d, want %d", second, first)
	}

	rec, _ := ds.Get("arxiv:0001")
	if rec.Title != "A" {
		t.Errorf("Get().Title = %q, want original %q (Put must not overwrite)", rec.Title, "A")
	}
}

func TestDocumentStore_Contains(t *testing.T) {
	ds := NewDocumentStore(newTestStore(t))
	if ds.Contains("arxiv:0001") {
		t.Fatal("Contains() = true before any Put()")
	}
	if _, err := ds.Put("arxiv:0001", DocRecord{Title: "A"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if !ds.Contains("arxiv:0001") {
		t.Error("Contains() = false after Put()")
	}
}

func TestDocumentStore_OrdinalAndDocIDFromOrdinal_AreInverses(t *testing.T) {
	ds := NewDocumentStore(newTestStore(t))
	ord, err := ds.Put("arxiv:0001", DocRecord{Title: "A"})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	gotOrd, ok := ds.Ordinal("arxiv:0001")
	if !ok || gotOrd != ord {
		t.Errorf("Ordinal() = (%d, %v), want (%d, true)", gotOrd, ok, ord)
	}

	gotDocID, ok := ds.DocIDFromOrdinal(ord)
	if !ok || gotDocID != "arxiv:0001" {
		t.Errorf("DocIDFromOrdinal() = (%q, %v), want (\"arxiv:0001\", true)", gotDocID, ok)
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// LOAD / PERSISTENCE TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestDocumentStore_Load_RebuildsOrdinalsFromStore(t *testing.T) {
	store := newTestStore(t)
	ds := NewDocumentStore(store)
	ord, err := ds.Put("arxiv:0001", DocRecord{Title: "A", Categories: []string{"cs.IR"}})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	reloaded := NewDocumentStore(store)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	gotOrd, ok := reloaded.Ordinal("arxiv:0001")
	if !ok || gotOrd != ord {
		t.Errorf("after Load(), Ordinal() = (%d, %v), want (%d, true)", gotOrd, ok, ord)
	}
	rec, ok := reloaded.Get("arxiv:0001")
	if !ok || len(rec.Categories) != 1 || rec.Categories[0] != "cs.IR" {
		t.Errorf("after Load(), Get() = %+v, want Categories=[cs.IR]", rec)
	}
}
