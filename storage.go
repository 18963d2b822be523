package corpus

import (
	"encoding/json"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

// Store is the abstract persistent key-value surface spec.md §2 asks for.
// Every module that needs durable state (Lexicon, DocumentStore,
// ForwardIndex, BarrelSet) goes through a Store rather than touching files
// directly; JSON is the concrete value encoding, never the storage model
// itself (spec.md §1).
//
// Store is backed by badger, an embedded ordered KV store, grounded in
// gloudx-ues's direct dependency on github.com/dgraph-io/badger/v4. Badger's
// transactions give atomic multi-key replace for free, which is stronger
// than the write-temp-rename spec.md §6 merely recommends.
type Store struct {
	db *badger.DB
}

// OpenStore opens (creating if absent) a badger database rooted at dir.
func OpenStore(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: opening store at %s: %v", ErrConfig, dir, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying badger database.
func (s *Store) Close() error {
	return s.db.Close()
}

// PutJSON marshals v and writes it under key in a single transaction.
func (s *Store) PutJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// GetJSON reads key and unmarshals it into v. It reports ok=false (no
// error) when the key is absent — the caller decides whether that is
// meaningful (e.g. ShardMissing is never an error; see barrel.go).
func (s *Store) GetJSON(key string, v any) (ok bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		ok = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	return ok, nil
}

// Keys returns every key under the given prefix. Used by the Load methods
// of Lexicon, DocumentStore and ForwardIndex to enumerate their entries.
func (s *Store) Keys(prefix string) ([]string, error) {
	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("keys %s: %w", prefix, err)
	}
	return keys, nil
}

// Delete removes a key. Absence is not an error.
func (s *Store) Delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
}
