package chi

import (
	"context"

	"github.com/kailas-cloud/figdex/internal/domain/figure"
	"github.com/kailas-cloud/figdex/internal/domain/search/request"
	"github.com/kailas-cloud/figdex/internal/domain/search/result"
	figureuc "github.com/kailas-cloud/figdex/internal/usecase/figure"
	healthuc "github.com/kailas-cloud/figdex/internal/usecase/health"
)

// Searcher runs the three search shapes.
type Searcher interface {
	WordWheel(ctx context.Context, query, ownerID string, limit int) ([]result.Record, error)
	Partial(ctx context.Context, query, ownerID string, page request.Page) ([]result.Record, error)
	FullSearch(ctx context.Context, query, ownerID string) ([]result.Record, error)
}

// Figures is the figure write path.
type Figures interface {
	Create(ctx context.Context, f *figure.Figure) (figureuc.WriteResult, error)
	Update(ctx context.Context, f *figure.Figure) (figureuc.WriteResult, error)
	Delete(ctx context.Context, ownerID, id string) (bool, error)
	Get(ctx context.Context, ownerID, id string) (*figure.Figure, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]figure.Figure, error)
	Resync(ctx context.Context, ownerID string) (figureuc.ResyncResult, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
