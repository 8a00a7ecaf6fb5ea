// Package search is the single entry point for figure search: one method
// per query shape, each delegating to the backend chosen at construction.
package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/figdex/internal/domain/search/request"
	"github.com/kailas-cloud/figdex/internal/domain/search/result"
	"github.com/kailas-cloud/figdex/internal/domain/search/shape"
	"github.com/kailas-cloud/figdex/internal/metrics"
)

// Service runs word-wheel, partial and full searches.
type Service struct {
	backend RankedSearch
	limits  request.Limits
}

// New creates a search service over the selected backend.
func New(backend RankedSearch, limits request.Limits) *Service {
	return &Service{backend: backend, limits: limits}
}

// WordWheel runs a prefix-biased autocomplete query. limit <= 0 means the default.
func (s *Service) WordWheel(ctx context.Context, query, ownerID string, limit int) ([]result.Record, error) {
	return s.run(ctx, shape.WordWheel, query, ownerID, request.Page{Limit: limit})
}

// Partial runs a substring query with pagination.
func (s *Service) Partial(ctx context.Context, query, ownerID string, page request.Page) ([]result.Record, error) {
	return s.run(ctx, shape.Partial, query, ownerID, page)
}

// FullSearch runs a multi-term query where every term must match.
func (s *Service) FullSearch(ctx context.Context, query, ownerID string) ([]result.Record, error) {
	return s.run(ctx, shape.Full, query, ownerID, request.Page{})
}

// Search runs an already-built request.
func (s *Service) Search(ctx context.Context, req *request.Request) ([]result.Record, error) {
	if req.BelowMinimum() {
		metrics.SearchRequestsTotal.WithLabelValues(string(req.Shape()), "none").Inc()
		return []result.Record{}, nil
	}

	records, err := s.backend.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s search: %w", req.Shape(), err)
	}
	if records == nil {
		records = []result.Record{}
	}
	return records, nil
}

// Limits returns the page size bounds requests are built with.
func (s *Service) Limits() request.Limits {
	return s.limits
}

func (s *Service) run(
	ctx context.Context, sh shape.Shape, query, ownerID string, page request.Page,
) ([]result.Record, error) {
	req, err := request.New(sh, query, ownerID, page, s.limits)
	if err != nil {
		return nil, err
	}
	return s.Search(ctx, &req)
}
