package db

import (
	"context"
	"time"
)

// SearchStore is the facade over a managed search backend (Redis or bleve):
// it both holds SearchDocuments and ranks them.
type SearchStore interface {
	Pinger
	DocumentStore
	IndexManager
	RankedSearcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DocumentItem holds a single key+fields pair for batched writes.
type DocumentItem struct {
	Key    string
	Fields map[string]string
}

// DocumentStore provides replace-by-key document operations.
type DocumentStore interface {
	PutDocument(ctx context.Context, key string, fields map[string]string) error
	PutDocuments(ctx context.Context, items []DocumentItem) error
	GetDocument(ctx context.Context, key string) (map[string]string, error)
	DeleteDocument(ctx context.Context, key string) error
}

// IndexManager provides index lifecycle operations.
type IndexManager interface {
	EnsureIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// RankedSearcher runs relevance-ranked queries against an index.
type RankedSearcher interface {
	RankedSearch(ctx context.Context, q *RankedQuery) (*SearchResult, error)
}
