package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/figdex/internal/db"
)

// PutDocument writes a search document hash. Callers always write the full
// field set, so HSET replaces the previous version in place.
func (s *Store) PutDocument(ctx context.Context, key string, fields map[string]string) error {
	return s.HSet(ctx, key, fields)
}

// PutDocuments writes many search documents in one pipelined round-trip.
func (s *Store) PutDocuments(ctx context.Context, items []db.DocumentItem) error {
	return s.HSetMulti(ctx, items)
}

// GetDocument reads a search document hash. A missing key yields db.ErrKeyNotFound.
func (s *Store) GetDocument(ctx context.Context, key string) (map[string]string, error) {
	m, err := s.HGetAll(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, db.ErrKeyNotFound
	}
	return m, nil
}

// DeleteDocument removes a search document. Deleting a missing key is not an error.
func (s *Store) DeleteDocument(ctx context.Context, key string) error {
	return s.Del(ctx, key)
}

// HSet sets hash fields.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	cmd := s.b().Hset().Key(key).FieldValue()
	for k, v := range fields {
		cmd = cmd.FieldValue(k, v)
	}
	if err := s.do(ctx, cmd.Build()).Error(); err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// HSetMulti stores multiple hashes in a single DoMulti round-trip.
func (s *Store) HSetMulti(ctx context.Context, items []db.DocumentItem) error {
	if len(items) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, len(items))
	for i, item := range items {
		cmd := s.b().Hset().Key(item.Key).FieldValue()
		for k, v := range item.Fields {
			cmd = cmd.FieldValue(k, v)
		}
		cmds[i] = cmd.Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpHSet, Err: fmt.Errorf("key %s: %w", items[i].Key, err)}
		}
	}
	return nil
}

// HGetAll returns all fields of a hash.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	cmd := s.b().Hgetall().Key(key).Build()
	m, err := s.do(ctx, cmd).AsStrMap()
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	return m, nil
}

// Del deletes a key.
func (s *Store) Del(ctx context.Context, key string) error {
	cmd := s.b().Del().Key(key).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}
