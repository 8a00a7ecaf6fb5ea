package figdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/figdex/internal/db"
	dbBleve "github.com/kailas-cloud/figdex/internal/db/bleve"
	dbRedis "github.com/kailas-cloud/figdex/internal/db/redis"
	dbSqlite "github.com/kailas-cloud/figdex/internal/db/sqlite"
	domdoc "github.com/kailas-cloud/figdex/internal/domain/searchdoc"
	"github.com/kailas-cloud/figdex/internal/repository/fallback"
	"github.com/kailas-cloud/figdex/internal/repository/managed"
	"github.com/kailas-cloud/figdex/internal/repository/searchdoc"
	figureuc "github.com/kailas-cloud/figdex/internal/usecase/figure"
	healthuc "github.com/kailas-cloud/figdex/internal/usecase/health"
	"github.com/kailas-cloud/figdex/internal/usecase/indexer"
	searchuc "github.com/kailas-cloud/figdex/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the figdex entry point: figure storage, indexing and search.
type Client struct {
	primary *dbSqlite.Store
	index   db.SearchStore // nil when no managed index is configured
	managed bool

	figures *figureuc.Service
	search  *searchuc.Service
	health  *healthuc.Service
}

// New opens the primary store and, when a driver is configured, the managed
// index. The index is kept current on every write; queries use it unless
// WithTestMode is set.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultClientConfig()
	for _, o := range opts {
		o(cfg)
	}
	if cfg.indexName == "" {
		cfg.indexName = cfg.keyPrefix + "idx"
	}

	primary, err := dbSqlite.NewStore(cfg.dbPath)
	if err != nil {
		return nil, fmt.Errorf("figdex: open primary store: %w", err)
	}
	c := &Client{primary: primary}

	var managedRepo searchuc.RankedSearch
	docs := indexer.Repository(noopDocs{})
	if cfg.driver != "" {
		index, err := createIndex(cfg)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.index = index

		if err := index.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
			c.Close()
			return nil, fmt.Errorf("figdex: search index not ready: %w", err)
		}

		docRepo := searchdoc.New(index, searchdoc.Keys{Prefix: cfg.keyPrefix, IndexName: cfg.indexName})
		if err := docRepo.EnsureIndex(ctx); err != nil {
			c.Close()
			return nil, fmt.Errorf("figdex: ensure search index: %w", err)
		}
		docs = docRepo
		managedRepo = managed.New(index, cfg.indexName)
	}

	sel := searchuc.Selection{Enabled: cfg.driver != "", TestMode: cfg.testMode}
	c.managed = sel.UseManaged()

	fallbackRepo := fallback.New(primary, fallback.Options{
		OverfetchFactor: cfg.overfetch,
		MaxCandidates:   cfg.maxCandidates,
	})
	c.search = searchuc.New(searchuc.NewSelector(sel, managedRepo, fallbackRepo, cfg.logger), cfg.limits)
	c.figures = figureuc.New(primary, indexer.New(docs, cfg.logger))

	var indexPinger healthuc.IndexPinger
	if c.index != nil {
		indexPinger = c.index
	}
	c.health = healthuc.New(primary, indexPinger)

	cfg.logger.Info("Search backend selected",
		zap.Bool("managed", c.managed),
		zap.String("driver", cfg.driver),
		zap.String("index", cfg.indexName),
	)
	return c, nil
}

func createIndex(cfg *clientConfig) (db.SearchStore, error) {
	switch cfg.driver {
	case driverRedis:
		if len(cfg.addrs) == 0 {
			return nil, errors.New("figdex: redis address required")
		}
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("figdex: create redis store: %w", err)
		}
		return s, nil
	case driverBleve:
		return dbBleve.NewStore(dbBleve.Config{Path: cfg.blevePath}), nil
	default:
		return nil, fmt.Errorf("figdex: unknown driver %q", cfg.driver)
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.index != nil {
		c.index.Close()
	}
	if c.primary != nil {
		_ = c.primary.Close()
	}
}

// ManagedSearch reports whether queries are served by the managed index.
func (c *Client) ManagedSearch() bool { return c.managed }

// IndexEnabled reports whether a managed index is open.
func (c *Client) IndexEnabled() bool { return c.index != nil }

// Limits returns the effective search page size bounds.
func (c *Client) Limits() Limits { return c.search.Limits() }

// Create stores a new figure and indexes it.
func (c *Client) Create(ctx context.Context, f *Figure) (WriteResult, error) {
	return c.figures.Create(ctx, f)
}

// Update replaces a stored figure and reindexes it.
func (c *Client) Update(ctx context.Context, f *Figure) (WriteResult, error) {
	return c.figures.Update(ctx, f)
}

// Delete removes a figure. The bool reports whether its index entry went too.
func (c *Client) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	return c.figures.Delete(ctx, ownerID, id)
}

// Get returns one of the owner's figures.
func (c *Client) Get(ctx context.Context, ownerID, id string) (*Figure, error) {
	return c.figures.Get(ctx, ownerID, id)
}

// ListByOwner pages through the owner's figures.
func (c *Client) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Figure, error) {
	return c.figures.ListByOwner(ctx, ownerID, limit, offset)
}

// Resync rebuilds every search document of the owner from the primary store.
func (c *Client) Resync(ctx context.Context, ownerID string) (ResyncResult, error) {
	return c.figures.Resync(ctx, ownerID)
}

// WordWheel runs an autocomplete search.
func (c *Client) WordWheel(ctx context.Context, query, ownerID string, limit int) ([]Record, error) {
	return c.search.WordWheel(ctx, query, ownerID, limit)
}

// Partial runs a substring search.
func (c *Client) Partial(ctx context.Context, query, ownerID string, page Page) ([]Record, error) {
	return c.search.Partial(ctx, query, ownerID, page)
}

// FullSearch runs a search where every term must match.
func (c *Client) FullSearch(ctx context.Context, query, ownerID string) ([]Record, error) {
	return c.search.FullSearch(ctx, query, ownerID)
}

// Check reports the health of the primary store and the index.
func (c *Client) Check(ctx context.Context) HealthReport {
	return c.health.Check(ctx)
}

// noopDocs stands in for the document store when no index is configured.
type noopDocs struct{}

func (noopDocs) Upsert(context.Context, *domdoc.Document) error { return nil }

func (noopDocs) UpsertBatch(context.Context, []domdoc.Document) error { return nil }

func (noopDocs) Delete(context.Context, string, string) error { return nil }
