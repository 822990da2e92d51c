package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"tagdb/internal/tag"
	"tagdb/internal/tagdb"
)

// Key layout:
//
//	meta:location  -> stored location
//	file:<path>    -> JSON array of tags
const (
	badgerLocationKey = "meta:location"
	badgerFilePrefix  = "file:"
)

// BadgerStore persists databases in a Badger key-value directory at the
// location path.
type BadgerStore struct{}

var _ tagdb.Store = (*BadgerStore)(nil)

func NewBadgerStore() *BadgerStore {
	return &BadgerStore{}
}

func openBadger(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(nil).
		WithSyncWrites(true)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	return db, nil
}

func (s *BadgerStore) Load(location string) (*tagdb.Database, error) {
	// badger.Open would create a missing directory.
	if _, err := os.Stat(location); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", location, tagdb.ErrNotFound)
		}
		return nil, fmt.Errorf("stat database directory: %w", err)
	}

	kv, err := openBadger(location)
	if err != nil {
		return nil, err
	}
	defer kv.Close()

	var stored string
	var files []*tagdb.TaggedFile
	err = kv.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerLocationKey))
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		stored = string(val)

		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerFilePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			item := it.Item()
			path := strings.TrimPrefix(string(item.Key()), badgerFilePrefix)
			err := item.Value(func(val []byte) error {
				var tags []tag.Tag
				if err := json.Unmarshal(val, &tags); err != nil {
					return fmt.Errorf("decoding tags of %s: %w", path, err)
				}
				files = append(files, tagdb.NewTaggedFile(path, tags...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("%s: %w", location, tagdb.ErrNotFound)
		}
		return nil, fmt.Errorf("reading badger db: %w", err)
	}

	return tagdb.Restore(stored, files), nil
}

// Save rewrites every key in one transaction: stale file keys are deleted
// and current ones overwritten.
func (s *BadgerStore) Save(db *tagdb.Database) error {
	if err := os.MkdirAll(db.Location(), 0755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	kv, err := openBadger(db.Location())
	if err != nil {
		return err
	}
	defer kv.Close()

	current := make(map[string][]byte, db.Len())
	for _, f := range db.Files() {
		encoded, err := json.Marshal(f.Tags())
		if err != nil {
			return fmt.Errorf("encoding tags of %s: %w", f.Path(), err)
		}
		current[badgerFilePrefix+f.Path()] = encoded
	}

	err = kv.Update(func(txn *badger.Txn) error {
		var stale [][]byte

		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(badgerFilePrefix)
		it := txn.NewIterator(opts)
		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			if _, ok := current[string(key)]; !ok {
				stale = append(stale, key)
			}
		}
		it.Close()

		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		for key, val := range current {
			if err := txn.Set([]byte(key), val); err != nil {
				return err
			}
		}
		return txn.Set([]byte(badgerLocationKey), []byte(db.Location()))
	})
	if err != nil {
		return fmt.Errorf("writing badger db: %w", err)
	}
	return nil
}
