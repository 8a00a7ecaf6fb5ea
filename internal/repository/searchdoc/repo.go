// Package searchdoc persists SearchDocuments in the managed search backend.
package searchdoc

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/figdex/internal/db"
	"github.com/kailas-cloud/figdex/internal/domain"
	domdoc "github.com/kailas-cloud/figdex/internal/domain/searchdoc"
)

// store is the consumer interface for search documents (ISP).
type store interface {
	PutDocument(ctx context.Context, key string, fields map[string]string) error
	PutDocuments(ctx context.Context, items []db.DocumentItem) error
	GetDocument(ctx context.Context, key string) (map[string]string, error)
	DeleteDocument(ctx context.Context, key string) error
	EnsureIndex(ctx context.Context, def *db.IndexDefinition) error
}

// Repo implements usecase/indexer.Repository.
type Repo struct {
	store store
	keys  Keys
}

// New creates a search document repository.
func New(s store, keys Keys) *Repo {
	return &Repo{store: s, keys: keys}
}

// EnsureIndex creates the SearchDocument index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	def, err := r.keys.IndexDefinition()
	if err != nil {
		return fmt.Errorf("index definition: %w", err)
	}
	if err := r.store.EnsureIndex(ctx, def); err != nil {
		return fmt.Errorf("ensure index %s: %w", def.Name, err)
	}
	return nil
}

// Upsert writes doc under its (kind, id) key, replacing any previous version.
func (r *Repo) Upsert(ctx context.Context, doc *domdoc.Document) error {
	fields, err := buildHashFields(doc)
	if err != nil {
		return err
	}
	key := r.keys.Doc(doc.EntityType, doc.EntityID)
	if err := r.store.PutDocument(ctx, key, fields); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// UpsertBatch writes all docs in one round-trip. Empty input is a no-op.
func (r *Repo) UpsertBatch(ctx context.Context, docs []domdoc.Document) error {
	if len(docs) == 0 {
		return nil
	}
	items := make([]db.DocumentItem, 0, len(docs))
	for i := range docs {
		fields, err := buildHashFields(&docs[i])
		if err != nil {
			return fmt.Errorf("document %s: %w", docs[i].EntityID, err)
		}
		items = append(items, db.DocumentItem{
			Key:    r.keys.Doc(docs[i].EntityType, docs[i].EntityID),
			Fields: fields,
		})
	}
	if err := r.store.PutDocuments(ctx, items); err != nil {
		return fmt.Errorf("put batch of %d: %w", len(items), err)
	}
	return nil
}

// Delete removes the document of (kind, id). Missing documents are not an error.
func (r *Repo) Delete(ctx context.Context, kind, id string) error {
	key := r.keys.Doc(kind, id)
	if err := r.store.DeleteDocument(ctx, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Get returns the document of (kind, id), or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, kind, id string) (domdoc.Document, error) {
	key := r.keys.Doc(kind, id)
	m, err := r.store.GetDocument(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domdoc.Document{}, domain.ErrNotFound
		}
		return domdoc.Document{}, fmt.Errorf("get %s: %w", key, err)
	}
	return ParseHashFields(m), nil
}
