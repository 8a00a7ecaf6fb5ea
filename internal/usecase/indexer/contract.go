package indexer

import (
	"context"

	domdoc "github.com/kailas-cloud/figdex/internal/domain/searchdoc"
)

// Repository persists search documents.
type Repository interface {
	Upsert(ctx context.Context, doc *domdoc.Document) error
	UpsertBatch(ctx context.Context, docs []domdoc.Document) error
	Delete(ctx context.Context, kind, id string) error
}
