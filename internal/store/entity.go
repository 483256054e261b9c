package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"

	"github.com/dgraph-io/badger/v4"
)

// Entity provides generic document operations for any domain type.
type Entity[T any] struct {
	store    *Badger
	prefix   string
	notFound error
	indexes  []Index[T]
}

// Index defines a secondary index on an entity.
type Index[T any] struct {
	name            string
	keyGen          func(*T) []string
	lookupTransform func(string) string // Optional transformation for lookups
	unique          bool
	conflict        error // Returned when a unique value is taken
}

// NewEntity creates a new Entity for type T stored under prefix. notFound is
// returned by lookups that miss.
func NewEntity[T any](s *Badger, prefix string, notFound error) *Entity[T] {
	return &Entity[T]{
		store:    s,
		prefix:   prefix,
		notFound: notFound,
	}
}

// WithUniqueIndex adds a unique secondary index. conflict is returned when a
// write would reuse a value held by another document. lookupTransform, when
// set, is applied to values before lookup.
func (e *Entity[T]) WithUniqueIndex(name string, keyGen func(*T) []string, lookupTransform func(string) string, conflict error) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{
		name:            name,
		keyGen:          keyGen,
		lookupTransform: lookupTransform,
		unique:          true,
		conflict:        conflict,
	})
	return e
}

// WithIndex adds a multi-valued secondary index.
func (e *Entity[T]) WithIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{
		name:   name,
		keyGen: keyGen,
	})
	return e
}

func (e *Entity[T]) indexKeys(idx Index[T], docID string, entity *T) [][]byte {
	values := idx.keyGen(entity)
	keys := make([][]byte, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if idx.unique {
			keys = append(keys, indexKey(e.prefix, idx.name, v))
		} else {
			keys = append(keys, multiIndexKey(e.prefix, idx.name, v, docID))
		}
	}
	return keys
}

// Create stores a new entity under docID.
// Returns ErrAlreadyExists if docID is taken, or the index's conflict error
// if a unique index value is taken.
func (e *Entity[T]) Create(ctx context.Context, docID string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	return e.store.update(func(txn *badger.Txn) error {
		key := entityKey(e.prefix, docID)
		_, err := txn.Get(key)
		if err == nil {
			return fmt.Errorf("%s%s: %w", e.prefix, docID, ErrAlreadyExists)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("failed to check existing key: %w", err)
		}

		if err := e.checkUnique(txn, entity, nil); err != nil {
			return err
		}

		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("failed to set key: %w", err)
		}
		return e.setIndexes(txn, docID, entity)
	})
}

// Get retrieves an entity by id.
func (e *Entity[T]) Get(ctx context.Context, docID string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entity *T
	err := e.store.view(func(txn *badger.Txn) error {
		var err error
		entity, err = e.getTxn(txn, docID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (e *Entity[T]) getTxn(txn *badger.Txn, docID string) (*T, error) {
	item, err := txn.Get(entityKey(e.prefix, docID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, e.notFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	var entity T
	err = item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, &entity); err != nil {
			return fmt.Errorf("failed to unmarshal entity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// GetByIndex retrieves an entity through a unique index.
func (e *Entity[T]) GetByIndex(ctx context.Context, indexName, value string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, idx := range e.indexes {
		if idx.name == indexName && idx.lookupTransform != nil {
			value = idx.lookupTransform(value)
			break
		}
	}

	var entity *T
	err := e.store.view(func(txn *badger.Txn) error {
		item, err := txn.Get(indexKey(e.prefix, indexName, value))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return e.notFound
		}
		if err != nil {
			return err
		}

		docID, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		entity, err = e.getTxn(txn, string(docID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// ListByIndex returns every entity whose multi-valued index holds value.
func (e *Entity[T]) ListByIndex(ctx context.Context, indexName, value string) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []*T
	err := e.store.view(func(txn *badger.Txn) error {
		prefix := multiIndexPrefix(e.prefix, indexName, value)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			docID, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			entity, err := e.getTxn(txn, string(docID))
			if errors.Is(err, e.notFound) {
				continue
			}
			if err != nil {
				return err
			}
			out = append(out, entity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces an existing entity and moves its index keys.
func (e *Entity[T]) Update(ctx context.Context, docID string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	return e.store.update(func(txn *badger.Txn) error {
		old, err := e.getTxn(txn, docID)
		if err != nil {
			return err
		}

		if err := e.checkUnique(txn, entity, old); err != nil {
			return err
		}

		for _, idx := range e.indexes {
			for _, key := range e.indexKeys(idx, docID, old) {
				if err := txn.Delete(key); err != nil {
					return fmt.Errorf("failed to delete old index key: %w", err)
				}
			}
		}

		if err := txn.Set(entityKey(e.prefix, docID), data); err != nil {
			return fmt.Errorf("failed to set key: %w", err)
		}
		return e.setIndexes(txn, docID, entity)
	})
}

// List returns an iterator over all entities.
func (e *Entity[T]) List(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		err := e.store.view(func(txn *badger.Txn) error {
			prefix := []byte(e.prefix)
			skip := indexPrefix(e.prefix)

			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchValues = true

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				if err := ctx.Err(); err != nil {
					return err
				}
				if bytes.HasPrefix(it.Item().Key(), skip) {
					continue
				}

				var entity T
				err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &entity)
				})
				if err != nil {
					return fmt.Errorf("failed to unmarshal entity: %w", err)
				}

				if !yield(&entity, nil) {
					return errStopIteration
				}
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopIteration) {
			yield(nil, err)
		}
	}
}

// Collect drains List into a slice.
func (e *Entity[T]) Collect(ctx context.Context) ([]*T, error) {
	var out []*T
	for entity, err := range e.List(ctx) {
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}

var errStopIteration = errors.New("iteration stopped")

// checkUnique fails if entity would take a unique index value owned by a
// different document. Values already held by old are allowed.
func (e *Entity[T]) checkUnique(txn *badger.Txn, entity, old *T) error {
	for _, idx := range e.indexes {
		if !idx.unique {
			continue
		}

		held := make(map[string]bool)
		if old != nil {
			for _, v := range idx.keyGen(old) {
				held[v] = true
			}
		}

		for _, v := range idx.keyGen(entity) {
			if v == "" || held[v] {
				continue
			}
			_, err := txn.Get(indexKey(e.prefix, idx.name, v))
			if err == nil {
				conflict := idx.conflict
				if conflict == nil {
					conflict = ErrAlreadyExists
				}
				return fmt.Errorf("index %s conflict on %q: %w", idx.name, v, conflict)
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("failed to check index key: %w", err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) setIndexes(txn *badger.Txn, docID string, entity *T) error {
	for _, idx := range e.indexes {
		for _, key := range e.indexKeys(idx, docID, entity) {
			if err := txn.Set(key, []byte(docID)); err != nil {
				return fmt.Errorf("failed to set index key: %w", err)
			}
		}
	}
	return nil
}
