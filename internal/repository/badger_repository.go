package repository

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/catalog"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/db"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/domain"
)

// Key layout:
//
//	catalog/<name>                        saved-at timestamp
//	entity/<name>/<kind slug>/<id>        JSON entity, id big-endian
//	change/<name>/<seq>                   JSON change, seq big-endian
const catalogPrefix = "catalog/"

func catalogKey(name string) []byte { return []byte(catalogPrefix + name) }

func entityPrefix(name string) []byte { return []byte("entity/" + name + "/") }

func entityKey(name string, ref domain.Ref) []byte {
	k := append(entityPrefix(name), ref.Kind.Slug()...)
	k = append(k, '/')
	return binary.BigEndian.AppendUint32(k, uint32(ref.ID))
}

func changePrefix(name string) []byte { return []byte("change/" + name + "/") }

// BadgerCatalogRepository stores catalog snapshots in the embedded store.
type BadgerCatalogRepository struct {
	DB *db.Badger
}

// Save replaces the snapshot of name in one transaction.
func (r BadgerCatalogRepository) Save(_ context.Context, name string, cat *catalog.Catalog) error {
	err := r.DB.DB.Update(func(txn *badger.Txn) error {
		if err := deletePrefix(txn, entityPrefix(name)); err != nil {
			return err
		}
		for _, e := range allEntities(cat) {
			payload, err := encodeEntity(e)
			if err != nil {
				return err
			}
			if err := txn.Set(entityKey(name, e.Ref()), payload); err != nil {
				return err
			}
		}
		stamp, _ := time.Now().UTC().MarshalBinary()
		return txn.Set(catalogKey(name), stamp)
	})
	if errors.Is(err, badger.ErrTxnTooBig) {
		return fmt.Errorf("catalog %q is too large for one transaction: %w", name, err)
	}
	return err
}

func (r BadgerCatalogRepository) Load(_ context.Context, name string) (*catalog.Catalog, error) {
	cat := catalog.New()
	err := r.DB.DB.View(func(txn *badger.Txn) error {
		if _, err := txn.Get(catalogKey(name)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("catalog %q: %w", name, domain.ErrNotFound)
			}
			return err
		}

		prefix := entityPrefix(name)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			kind, err := kindFromKey(item.Key()[len(prefix):])
			if err != nil {
				return err
			}
			err = item.Value(func(val []byte) error {
				e, err := decodeEntity(kind, val)
				if err != nil {
					return err
				}
				return cat.Insert(e)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// Names lists the stored catalogs by name.
func (r BadgerCatalogRepository) Names(_ context.Context) ([]string, error) {
	var out []string
	err := r.DB.DB.View(func(txn *badger.Txn) error {
		prefix := []byte(catalogPrefix)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			out = append(out, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	return out, err
}

// Delete drops the snapshot and preferences of name. The journal is kept.
func (r BadgerCatalogRepository) Delete(_ context.Context, name string) error {
	return r.DB.DB.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(catalogKey(name)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("catalog %q: %w", name, domain.ErrNotFound)
			}
			return err
		}
		if err := deletePrefix(txn, entityPrefix(name)); err != nil {
			return err
		}
		if err := txn.Delete(prefsKey(name)); err != nil {
			return err
		}
		return txn.Delete(catalogKey(name))
	})
}

// kindFromKey parses the "<slug>/<id>" tail of an entity key.
func kindFromKey(tail []byte) (domain.Kind, error) {
	if len(tail) < 6 || tail[len(tail)-5] != '/' {
		return 0, fmt.Errorf("malformed entity key %q", tail)
	}
	return domain.ParseKind(string(tail[:len(tail)-5]))
}

func deletePrefix(txn *badger.Txn, prefix []byte) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()
	for _, k := range keys {
		if err := txn.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// BadgerJournalRepository keeps the change journal in the embedded store.
type BadgerJournalRepository struct {
	DB *db.Badger
}

func (r BadgerJournalRepository) Append(_ context.Context, name string, changes []domain.Change) error {
	if len(changes) == 0 {
		return nil
	}
	prefix := changePrefix(name)
	return r.DB.DB.Update(func(txn *badger.Txn) error {
		seq, err := lastSeq(txn, prefix)
		if err != nil {
			return err
		}
		for _, c := range changes {
			seq++
			c.Seq = seq
			val, err := json.Marshal(c)
			if err != nil {
				return err
			}
			key := binary.BigEndian.AppendUint64(append([]byte{}, prefix...), uint64(seq))
			if err := txn.Set(key, val); err != nil {
				return err
			}
		}
		return nil
	})
}

func lastSeq(txn *badger.Txn, prefix []byte) (int64, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.Reverse = true
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()
	it.Seek(append(append([]byte{}, prefix...), 0xFF))
	if !it.ValidForPrefix(prefix) {
		return 0, nil
	}
	key := it.Item().Key()
	if len(key) != len(prefix)+8 {
		return 0, fmt.Errorf("malformed journal key %q", key)
	}
	return int64(binary.BigEndian.Uint64(key[len(prefix):])), nil
}

// List returns up to limit changes, newest first.
func (r BadgerJournalRepository) List(_ context.Context, name string, limit int) ([]domain.Change, error) {
	if limit <= 0 {
		limit = 100
	}
	prefix := changePrefix(name)
	var out []domain.Change
	err := r.DB.DB.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(append(append([]byte{}, prefix...), 0xFF)); it.ValidForPrefix(prefix) && len(out) < limit; it.Next() {
			var c domain.Change
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &c)
			}); err != nil {
				return err
			}
			out = append(out, c)
		}
		return nil
	})
	return out, err
}

func prefsKey(name string) []byte { return []byte("prefs/" + name) }

func (r BadgerCatalogRepository) GetPreferences(_ context.Context, name string) (domain.Preferences, error) {
	var p domain.Preferences
	err := r.DB.DB.View(func(txn *badger.Txn) error {
		item, err := txn.Get(prefsKey(name))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("preferences %q: %w", name, domain.ErrNotFound)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	return p, err
}

func (r BadgerCatalogRepository) SavePreferences(_ context.Context, name string, p domain.Preferences) (domain.Preferences, error) {
	if p.LineEnding == "" {
		p.LineEnding = "lf"
	}
	p.UpdatedAt = time.Now().UTC()
	val, err := json.Marshal(p)
	if err != nil {
		return domain.Preferences{}, err
	}
	if err := r.DB.DB.Update(func(txn *badger.Txn) error {
		return txn.Set(prefsKey(name), val)
	}); err != nil {
		return domain.Preferences{}, err
	}
	return p, nil
}
