package health

import "context"

// DBPinger checks primary store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexPinger checks managed search index availability.
type IndexPinger interface {
	Ping(ctx context.Context) error
}
