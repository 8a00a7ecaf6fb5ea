// Package indexer keeps search documents in step with figure writes.
// It never returns errors to the write path: every call reports an Outcome.
package indexer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/figdex/internal/domain/figure"
	domdoc "github.com/kailas-cloud/figdex/internal/domain/searchdoc"
	logpkg "github.com/kailas-cloud/figdex/internal/logger"
	"github.com/kailas-cloud/figdex/internal/metrics"
)

// Operation labels.
const (
	OpReindex      = "reindex"
	OpUnindex      = "unindex"
	OpReindexBatch = "reindex_batch"
)

// Outcome reports the result of one index operation.
type Outcome struct {
	EntityID string
	Err      error
}

// OK reports whether the operation succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// BatchOutcome reports the result of a batch reindex. The batch is written
// in one round-trip, so it either fully succeeds or fully fails.
type BatchOutcome struct {
	Count int
	Err   error
}

// OK reports whether the batch succeeded.
func (o BatchOutcome) OK() bool { return o.Err == nil }

// Service derives search documents from figures and writes them.
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

// New creates an indexer.
func New(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Reindex upserts the search document for f.
func (s *Service) Reindex(ctx context.Context, f *figure.Figure) Outcome {
	doc := domdoc.FromFigure(f, s.now())
	err := s.repo.Upsert(ctx, &doc)
	s.record(ctx, OpReindex, err, zap.String("figure_id", f.ID), zap.String("owner_id", f.OwnerID))
	return Outcome{EntityID: f.ID, Err: err}
}

// Unindex deletes the search document of the figure with id.
func (s *Service) Unindex(ctx context.Context, id string) Outcome {
	err := s.repo.Delete(ctx, domdoc.KindFigure, id)
	s.record(ctx, OpUnindex, err, zap.String("figure_id", id))
	return Outcome{EntityID: id, Err: err}
}

// ReindexBatch upserts the search documents of all figures at once.
// Empty input succeeds without touching the store.
func (s *Service) ReindexBatch(ctx context.Context, figs []figure.Figure) BatchOutcome {
	if len(figs) == 0 {
		return BatchOutcome{}
	}

	now := s.now()
	docs := make([]domdoc.Document, 0, len(figs))
	for i := range figs {
		docs = append(docs, domdoc.FromFigure(&figs[i], now))
	}

	err := s.repo.UpsertBatch(ctx, docs)
	s.record(ctx, OpReindexBatch, err, zap.Int("count", len(docs)))
	return BatchOutcome{Count: len(docs), Err: err}
}

func (s *Service) record(ctx context.Context, op string, err error, fields ...zap.Field) {
	log := logpkg.FromContext(ctx, s.logger)
	if err != nil {
		metrics.IndexOperationsTotal.WithLabelValues(op, "error").Inc()
		log.Error("Index operation failed",
			append(fields, zap.String("op", op), zap.Error(err))...)
		return
	}
	metrics.IndexOperationsTotal.WithLabelValues(op, "ok").Inc()
	log.Debug("Index operation done", append(fields, zap.String("op", op))...)
}
