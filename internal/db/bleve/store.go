// Package bleve implements db.SearchStore on an embedded bleve index, for
// single-node deployments and tests that should not need Redis.
package bleve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"

	"github.com/kailas-cloud/figdex/internal/db"
)

// Compile-time check: Store implements db.SearchStore.
var _ db.SearchStore = (*Store)(nil)

// Config holds bleve store parameters. An empty Path keeps the index in memory.
type Config struct {
	Path string
}

// Store is a db.SearchStore over one bleve index. The index is created or
// opened by EnsureIndex; document operations before that fail with
// db.ErrIndexNotFound.
type Store struct {
	path string

	mu     sync.RWMutex
	index  bleve.Index
	def    *db.IndexDefinition
	closed bool
}

// NewStore creates a bleve-backed store.
func NewStore(cfg Config) *Store {
	return &Store{path: cfg.Path}
}

// Ping reports whether the store is usable.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return db.ErrClosed
	}
	if s.index != nil {
		if _, err := s.index.DocCount(); err != nil {
			return fmt.Errorf("ping: %w", err)
		}
	}
	return nil
}

// WaitForReady returns immediately: an embedded index has nothing to wait for.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// Close closes the underlying index.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index != nil {
		_ = s.index.Close()
		s.index = nil
	}
	s.closed = true
}

// --- IndexManager ---

// EnsureIndex opens the on-disk index at Path if present, otherwise creates
// it (or an in-memory one) with a mapping derived from def.
func (s *Store) EnsureIndex(_ context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return db.ErrClosed
	}
	if s.index != nil {
		if s.def.Name != def.Name {
			return &db.Error{Op: db.OpCreateIndex, Err: fmt.Errorf("store already holds index %s", s.def.Name)}
		}
		return nil
	}

	idx, err := s.openOrCreate(def)
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	s.index = idx
	s.def = def
	return nil
}

func (s *Store) openOrCreate(def *db.IndexDefinition) (bleve.Index, error) {
	if s.path != "" {
		idx, err := bleve.Open(s.path)
		if err == nil {
			return idx, nil
		}
		if !errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
			return nil, fmt.Errorf("open %s: %w", s.path, err)
		}
	}

	m, err := buildIndexMapping(def)
	if err != nil {
		return nil, err
	}
	if s.path == "" {
		return bleve.NewMemOnly(m)
	}
	return bleve.New(s.path, m)
}

// DropIndex closes the index and removes its files. Unlike a Redis FT index,
// a bleve index owns its documents, so they are dropped too.
func (s *Store) DropIndex(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil || s.def.Name != name {
		return db.ErrIndexNotFound
	}
	if err := s.index.Close(); err != nil {
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
	s.index = nil
	s.def = nil
	if s.path != "" {
		if err := os.RemoveAll(s.path); err != nil {
			return &db.Error{Op: db.OpDropIndex, Err: err}
		}
	}
	return nil
}

// IndexExists reports whether the named index is open.
func (s *Store) IndexExists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, db.ErrClosed
	}
	return s.index != nil && s.def.Name == name, nil
}

// --- DocumentStore ---

// PutDocument indexes fields under key, replacing any previous version.
func (s *Store) PutDocument(_ context.Context, key string, fields map[string]string) error {
	idx, def, err := s.current()
	if err != nil {
		return err
	}
	if err := idx.Index(key, toBleveDoc(def, fields)); err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// PutDocuments indexes many documents in one bleve batch.
func (s *Store) PutDocuments(_ context.Context, items []db.DocumentItem) error {
	if len(items) == 0 {
		return nil
	}
	idx, def, err := s.current()
	if err != nil {
		return err
	}

	batch := idx.NewBatch()
	for _, item := range items {
		if err := batch.Index(item.Key, toBleveDoc(def, item.Fields)); err != nil {
			return &db.Error{Op: db.OpBatch, Err: fmt.Errorf("key %s: %w", item.Key, err)}
		}
	}
	if err := idx.Batch(batch); err != nil {
		return &db.Error{Op: db.OpBatch, Err: err}
	}
	return nil
}

// GetDocument returns the stored fields of key, or db.ErrKeyNotFound.
func (s *Store) GetDocument(ctx context.Context, key string) (map[string]string, error) {
	idx, _, err := s.current()
	if err != nil {
		return nil, err
	}

	req := bleve.NewSearchRequest(bleve.NewDocIDQuery([]string{key}))
	req.Fields = []string{"*"}
	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	if len(res.Hits) == 0 {
		return nil, db.ErrKeyNotFound
	}
	return fromBleveFields(res.Hits[0].Fields), nil
}

// DeleteDocument removes key. Deleting a missing key is not an error.
func (s *Store) DeleteDocument(_ context.Context, key string) error {
	idx, _, err := s.current()
	if err != nil {
		return err
	}
	if err := idx.Delete(key); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

func (s *Store) current() (bleve.Index, *db.IndexDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, nil, db.ErrClosed
	}
	if s.index == nil {
		return nil, nil, db.ErrIndexNotFound
	}
	return s.index, s.def, nil
}

// toBleveDoc converts flat string fields into a bleve document. Numeric
// fields are parsed so they index as numbers; unparsable ones are skipped.
func toBleveDoc(def *db.IndexDefinition, fields map[string]string) map[string]interface{} {
	doc := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if f, ok := def.Field(k); ok && f.Type == db.IndexFieldNumeric {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				continue
			}
			doc[k] = n
			continue
		}
		doc[k] = v
	}
	return doc
}

func fromBleveFields(fields map[string]interface{}) map[string]string {
	m := make(map[string]string, len(fields))
	for k, v := range fields {
		switch val := v.(type) {
		case string:
			m[k] = val
		case float64:
			m[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case []interface{}:
			// Array positions only appear if a field was written twice; keep the first.
			if len(val) > 0 {
				m[k] = fmt.Sprint(val[0])
			}
		default:
			m[k] = fmt.Sprint(val)
		}
	}
	return m
}
