package figdex

import (
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/figdex/internal/domain/search/request"
)

// Search index drivers.
const (
	driverRedis = "redis"
	driverBleve = "bleve"
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	dbPath string

	driver    string // empty disables the managed index
	addrs     []string
	password  string
	blevePath string
	keyPrefix string
	indexName string
	testMode  bool

	limits           request.Limits
	overfetch        int
	maxCandidates    int
	readinessTimeout time.Duration

	logger *zap.Logger
}

func defaultClientConfig() *clientConfig {
	return &clientConfig{
		dbPath:           "figdex.db",
		keyPrefix:        "figdex:",
		limits:           request.DefaultLimits(),
		readinessTimeout: defaultReadinessTimeout,
		logger:           zap.NewNop(),
	}
}

// WithSQLite sets the primary store path. Use ":memory:" for a throwaway database.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.dbPath = path
	}
}

// WithRedis indexes documents in a Redis Stack deployment with RediSearch.
func WithRedis(password string, addrs ...string) Option {
	return func(c *clientConfig) {
		c.driver = driverRedis
		c.addrs = addrs
		c.password = password
	}
}

// WithBleve keeps the index in an embedded bleve index at path.
// An empty path keeps it in memory.
func WithBleve(path string) Option {
	return func(c *clientConfig) {
		c.driver = driverBleve
		c.blevePath = path
	}
}

// WithKeyPrefix sets the prefix of every search document key.
func WithKeyPrefix(prefix string) Option {
	return func(c *clientConfig) {
		c.keyPrefix = prefix
	}
}

// WithIndexName overrides the index name. Defaults to the key prefix + "idx".
func WithIndexName(name string) Option {
	return func(c *clientConfig) {
		c.indexName = name
	}
}

// WithTestMode keeps the index current but serves every query from the
// fallback scorer.
func WithTestMode() Option {
	return func(c *clientConfig) {
		c.testMode = true
	}
}

// WithLimits sets the page size bounds of search requests.
func WithLimits(l Limits) Option {
	return func(c *clientConfig) {
		c.limits = l
	}
}

// WithFallback tunes how many candidates the fallback scorer reads.
func WithFallback(overfetch, maxCandidates int) Option {
	return func(c *clientConfig) {
		c.overfetch = overfetch
		c.maxCandidates = maxCandidates
	}
}

// WithReadinessTimeout bounds how long New waits for the index to come up.
func WithReadinessTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.readinessTimeout = d
	}
}

// WithLogger sets the logger for search and indexing events.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		if l != nil {
			c.logger = l
		}
	}
}
