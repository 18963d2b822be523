package corpus

import (
	"sync"
)

// WordID is a dense, positive, never-reused integer assigned to a token on
// first sighting (spec.md §3). It gets its own type per spec.md §9's
// "dynamic maps keyed by stringified integers -> typed integer keys"
// redesign flag; the string conversion it names is isolated in wordid.go,
// at the persistence boundary, and nowhere else.
type WordID int

const lexiconKeyPrefix = "lex:"
const lexiconNextIDKey = "lex:__next__"

// Lexicon is the token <-> WordID bijection. Allocation is single-writer;
// Intern updates the in-memory maps in place under the write lock, and
// readers take the read lock, so a concurrent Lookup sees the maps either
// before or after an Intern, never part-way through one.
type Lexicon struct {
	mu       sync.RWMutex
	store    *Store
	toID     map[string]WordID
	fromID   map[WordID]string
	nextID   WordID
}

// NewLexicon constructs an empty, store-backed Lexicon.
func NewLexicon(store *Store) *Lexicon {
	return &Lexicon{
		store:  store,
		toID:   make(map[string]WordID),
		fromID: make(map[WordID]string),
		nextID: 1,
	}
}

// Load rebuilds the in-memory lexicon from the Store. Rebuilding nextID
// from scratch (max seen + 1) is acceptable per spec.md §4.2, as long as
// IDs stay dense enough for barrel balance.
func (l *Lexicon) Load() error {
	keys, err := l.store.Keys(lexiconKeyPrefix)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.toID = make(map[string]WordID, len(keys))
	l.fromID = make(map[WordID]string, len(keys))
	var maxID WordID

	for _, key := range keys {
		if key == lexiconNextIDKey {
			continue
		}
		token := key[len(lexiconKeyPrefix):]
		var id int
		if _, err := l.store.GetJSON(key, &id); err != nil {
			return err
		}
		wid := WordID(id)
		l.toID[token] = wid
		l.fromID[wid] = token
		if wid > maxID {
			maxID = wid
		}
	}

	l.nextID = maxID + 1
	return nil
}

// Lookup returns the current WordID for token, if any.
func (l *Lexicon) Lookup(token string) (WordID, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	id, ok := l.toID[token]
	return id, ok
}

// Token returns the token a WordID was assigned to, if any.
func (l *Lexicon) Token(id WordID) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	tok, ok := l.fromID[id]
	return tok, ok
}

// Intern returns token's existing WordID, or allocates max_existing_id+1
// and persists the assignment. Intern is single-writer: callers (the
// incremental indexer) must serialize calls themselves (spec.md §4.9's
// "exactly one incremental-indexer job may be in flight").
func (l *Lexicon) Intern(token string) (WordID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if id, ok := l.toID[token]; ok {
		return id, nil
	}

	id := l.nextID
	key := lexiconKeyPrefix + token
	if err := l.store.PutJSON(key, int(id)); err != nil {
		return 0, err
	}

	l.toID[token] = id
	l.fromID[id] = token
	l.nextID++
	return id, nil
}

// AllTokens returns every token currently in the lexicon, used to (re)build
// the autocomplete Trie.
func (l *Lexicon) AllTokens() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	tokens := make([]string, 0, len(l.toID))
	for tok := range l.toID {
		tokens = append(tokens, tok)
	}
	return tokens
}

// Size returns the number of interned tokens.
func (l *Lexicon) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.toID)
}
