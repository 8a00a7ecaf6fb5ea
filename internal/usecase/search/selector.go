package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/figdex/internal/domain/search/request"
	"github.com/kailas-cloud/figdex/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/figdex/internal/logger"
	"github.com/kailas-cloud/figdex/internal/metrics"
)

// Backend names used in logs and metric labels.
const (
	BackendManaged  = "managed"
	BackendFallback = "fallback"
)

// Selection is the configuration that picks the search backend.
type Selection struct {
	Enabled  bool // managed search index configured and switched on
	TestMode bool // in-memory / integration test process
}

// UseManaged reports whether the managed index should serve queries.
func (s Selection) UseManaged() bool {
	return s.Enabled && !s.TestMode
}

// NewSelector returns the RankedSearch the service should call. With the
// managed index selected, its failures are answered by fallback; otherwise
// fallback serves every query.
func NewSelector(sel Selection, managed, fallback RankedSearch, logger *zap.Logger) RankedSearch {
	fb := &instrumented{inner: fallback, backend: BackendFallback}
	if !sel.UseManaged() || managed == nil {
		return fb
	}
	return &fallbackOnError{
		primary:  &instrumented{inner: managed, backend: BackendManaged},
		fallback: fb,
		logger:   logger,
	}
}

// fallbackOnError re-issues a failed managed query through the fallback
// path. The caller never sees the managed error.
type fallbackOnError struct {
	primary  RankedSearch
	fallback RankedSearch
	logger   *zap.Logger
}

func (f *fallbackOnError) Search(ctx context.Context, req *request.Request) ([]result.Record, error) {
	records, err := f.primary.Search(ctx, req)
	if err == nil {
		return records, nil
	}

	// Caller gave up; don't start another backend call.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	logpkg.FromContext(ctx, f.logger).Warn("Managed search failed, falling back",
		zap.String("shape", string(req.Shape())),
		zap.String("owner_id", req.OwnerID()),
		zap.Error(err),
	)
	metrics.SearchFallbacksTotal.WithLabelValues(string(req.Shape())).Inc()

	return f.fallback.Search(ctx, req)
}

// instrumented counts successful answers per backend.
type instrumented struct {
	inner   RankedSearch
	backend string
}

func (i *instrumented) Search(ctx context.Context, req *request.Request) ([]result.Record, error) {
	start := time.Now()
	records, err := i.inner.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	metrics.SearchRequestsTotal.WithLabelValues(string(req.Shape()), i.backend).Inc()
	metrics.SearchDuration.WithLabelValues(string(req.Shape())).Observe(time.Since(start).Seconds())
	return records, nil
}
