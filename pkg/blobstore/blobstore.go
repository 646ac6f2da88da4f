// Package blobstore persists named settings and layout blobs in the
// application's private data directory.
package blobstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cockroachdb/pebble"
)

const keyPrefix = "blob/"

// Errors
var (
	ErrNotFound    = errors.New("blob not found")
	ErrInvalidName = errors.New("invalid blob name")
)

// Store is a pebble-backed name -> bytes store.
type Store struct {
	db *pebble.DB
}

// Open opens (creating if needed) the store rooted at path.
func Open(path string) (*Store, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open blob store: %w", err)
	}
	return &Store{db: db}, nil
}

// Save stores data under name, replacing any previous value.
func (s *Store) Save(name string, data []byte) error {
	key, err := blobKey(name)
	if err != nil {
		return err
	}
	return s.db.Set(key, data, pebble.Sync)
}

// Load returns the data stored under name.
func (s *Store) Load(name string) ([]byte, error) {
	key, err := blobKey(name)
	if err != nil {
		return nil, err
	}

	data, closer, err := s.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}
	defer closer.Close()

	// data is only valid until closer is closed
	return append([]byte{}, data...), nil
}

// Delete removes name. Deleting a missing name is not an error.
func (s *Store) Delete(name string) error {
	key, err := blobKey(name)
	if err != nil {
		return err
	}
	return s.db.Delete(key, pebble.Sync)
}

// List returns every stored name in lexical order.
func (s *Store) List() ([]string, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: prefixEnd([]byte(keyPrefix)),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var names []string
	for iter.First(); iter.Valid(); iter.Next() {
		names = append(names, strings.TrimPrefix(string(iter.Key()), keyPrefix))
	}
	return names, iter.Error()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func blobKey(name string) ([]byte, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	return []byte(keyPrefix + name), nil
}

func prefixEnd(prefix []byte) []byte {
	end := append([]byte{}, prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
