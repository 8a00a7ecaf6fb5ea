// Package figure is the figure write path. Figures are persisted first and
// indexed second; an indexing failure never fails the write.
package figure

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/figdex/internal/domain"
	domfig "github.com/kailas-cloud/figdex/internal/domain/figure"
)

// DefaultResyncBatchSize is how many figures one resync round-trip reindexes.
const DefaultResyncBatchSize = 200

// WriteResult is a persisted figure plus whether its search document is current.
type WriteResult struct {
	Figure  *domfig.Figure
	Indexed bool
}

// ResyncResult summarizes an owner resync.
type ResyncResult struct {
	Figures int
	Indexed int
	Failed  int
}

// Service handles figure CRUD and keeps the search index in step.
type Service struct {
	repo            Repository
	index           Indexer
	defaultPageSize int
	maxPageSize     int
	resyncBatch     int
	now             func() time.Time
	newID           func() string
}

// New creates a figure service.
func New(repo Repository, index Indexer) *Service {
	return &Service{
		repo:            repo,
		index:           index,
		defaultPageSize: 50,
		maxPageSize:     500,
		resyncBatch:     DefaultResyncBatchSize,
		now:             time.Now,
		newID:           func() string { return uuid.New().String() },
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// Create persists a new figure and indexes it. A missing id is generated.
func (s *Service) Create(ctx context.Context, f *domfig.Figure) (WriteResult, error) {
	if strings.TrimSpace(f.ID) == "" {
		f.ID = s.newID()
	}
	now := s.now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now
	return s.save(ctx, f)
}

// Update replaces an existing figure of the same owner and reindexes it.
func (s *Service) Update(ctx context.Context, f *domfig.Figure) (WriteResult, error) {
	if strings.TrimSpace(f.OwnerID) == "" {
		return WriteResult{}, domain.ErrOwnerRequired
	}
	existing, err := s.repo.Get(ctx, f.OwnerID, f.ID)
	if err != nil {
		return WriteResult{}, fmt.Errorf("get figure %s: %w", f.ID, err)
	}
	f.CreatedAt = existing.CreatedAt
	f.UpdatedAt = s.now().UTC()
	return s.save(ctx, f)
}

// Delete removes a figure and its search document. The bool reports whether
// the search document was removed too.
func (s *Service) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	if strings.TrimSpace(ownerID) == "" {
		return false, domain.ErrOwnerRequired
	}
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return false, fmt.Errorf("delete figure %s: %w", id, err)
	}
	return s.index.Unindex(ctx, id).OK(), nil
}

// Get returns one figure of an owner.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*domfig.Figure, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, domain.ErrOwnerRequired
	}
	f, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("get figure %s: %w", id, err)
	}
	return f, nil
}

// ListByOwner returns a page of an owner's figures ordered by name.
func (s *Service) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domfig.Figure, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, domain.ErrOwnerRequired
	}
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", domain.ErrInvalidQuery)
	}
	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}
	figs, err := s.repo.ListByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list figures: %w", err)
	}
	return figs, nil
}

// Resync rebuilds every search document of an owner from the primary store.
// Batches that fail to index are counted, not returned as errors.
func (s *Service) Resync(ctx context.Context, ownerID string) (ResyncResult, error) {
	if strings.TrimSpace(ownerID) == "" {
		return ResyncResult{}, domain.ErrOwnerRequired
	}

	var res ResyncResult
	for offset := 0; ; offset += s.resyncBatch {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		figs, err := s.repo.ListByOwner(ctx, ownerID, s.resyncBatch, offset)
		if err != nil {
			return res, fmt.Errorf("list figures at %d: %w", offset, err)
		}
		if len(figs) == 0 {
			break
		}

		res.Figures += len(figs)
		if out := s.index.ReindexBatch(ctx, figs); out.OK() {
			res.Indexed += len(figs)
		} else {
			res.Failed += len(figs)
		}

		if len(figs) < s.resyncBatch {
			break
		}
	}
	return res, nil
}

func (s *Service) save(ctx context.Context, f *domfig.Figure) (WriteResult, error) {
	if err := f.Validate(); err != nil {
		return WriteResult{}, err
	}
	if err := s.repo.Save(ctx, f); err != nil {
		return WriteResult{}, fmt.Errorf("save figure %s: %w", f.ID, err)
	}
	out := s.index.Reindex(ctx, f)
	return WriteResult{Figure: f, Indexed: out.OK()}, nil
}
