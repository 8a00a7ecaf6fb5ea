package figure

import (
	"context"

	domfig "github.com/kailas-cloud/figdex/internal/domain/figure"
	"github.com/kailas-cloud/figdex/internal/usecase/indexer"
)

// Repository is the primary figure store.
type Repository interface {
	Save(ctx context.Context, f *domfig.Figure) error
	Get(ctx context.Context, ownerID, id string) (*domfig.Figure, error)
	Delete(ctx context.Context, ownerID, id string) error
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domfig.Figure, error)
}

// Indexer keeps search documents in step with writes.
type Indexer interface {
	Reindex(ctx context.Context, f *domfig.Figure) indexer.Outcome
	Unindex(ctx context.Context, id string) indexer.Outcome
	ReindexBatch(ctx context.Context, figs []domfig.Figure) indexer.BatchOutcome
}
