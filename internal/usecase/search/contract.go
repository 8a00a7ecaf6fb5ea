package search

import (
	"context"

	"github.com/kailas-cloud/figdex/internal/domain/search/request"
	"github.com/kailas-cloud/figdex/internal/domain/search/result"
)

// RankedSearch answers one validated request with records ordered by
// relevance, highest first. Both the managed-index and the fallback
// repositories implement it.
type RankedSearch interface {
	Search(ctx context.Context, req *request.Request) ([]result.Record, error)
}
