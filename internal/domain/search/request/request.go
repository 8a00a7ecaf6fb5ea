package request

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/figdex/internal/domain"
	"github.com/kailas-cloud/figdex/internal/domain/search/shape"
)

// MaxQueryLength is the maximum allowed search query length.
const MaxQueryLength = 512

// Limits bounds the page sizes a request may ask for.
type Limits struct {
	DefaultLimit int // word-wheel and partial
	MaxLimit     int
	FullLimit    int // full search returns one page of this size
}

// DefaultLimits returns the built-in page size bounds.
func DefaultLimits() Limits {
	return Limits{DefaultLimit: 10, MaxLimit: 100, FullLimit: 50}
}

// Page is caller-supplied pagination. Zero values mean "use the default".
type Page struct {
	Limit  int
	Offset int
}

// Request is a validated, owner-scoped search query.
type Request struct {
	shape   shape.Shape
	query   string
	ownerID string
	limit   int
	offset  int
}

// New validates and normalizes search parameters. A query shorter than the
// shape's minimum is valid; callers check BelowMinimum before running it.
func New(s shape.Shape, query, ownerID string, page Page, limits Limits) (Request, error) {
	if !s.IsValid() {
		return Request{}, fmt.Errorf("%w: unknown shape %q", domain.ErrInvalidQuery, s)
	}
	if strings.TrimSpace(ownerID) == "" {
		return Request{}, domain.ErrOwnerRequired
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidQuery, MaxQueryLength)
	}
	if page.Offset < 0 {
		return Request{}, fmt.Errorf("%w: offset must not be negative", domain.ErrInvalidQuery)
	}
	limits = limits.withDefaults()

	limit := page.Limit
	offset := page.Offset
	if s == shape.Full {
		limit = limits.FullLimit
		offset = 0
	} else {
		if limit <= 0 {
			limit = limits.DefaultLimit
		}
		if limit > limits.MaxLimit {
			limit = limits.MaxLimit
		}
	}

	return Request{
		shape:   s,
		query:   strings.TrimSpace(query),
		ownerID: ownerID,
		limit:   limit,
		offset:  offset,
	}, nil
}

// Shape returns the query shape.
func (r *Request) Shape() shape.Shape { return r.shape }

// Query returns the trimmed query string.
func (r *Request) Query() string { return r.query }

// OwnerID returns the owner every result must belong to.
func (r *Request) OwnerID() string { return r.ownerID }

// Limit returns the page size.
func (r *Request) Limit() int { return r.limit }

// Offset returns the number of ranked results to skip.
func (r *Request) Offset() int { return r.offset }

// Window returns offset+limit, the number of ranked results needed to fill the page.
func (r *Request) Window() int { return r.offset + r.limit }

// BelowMinimum reports whether the query is too short to run for its shape.
func (r *Request) BelowMinimum() bool {
	return utf8.RuneCountInString(r.query) < r.shape.MinLength()
}

// Terms splits the query on whitespace into lowercase terms.
func (r *Request) Terms() []string {
	return Terms(r.query)
}

// Terms splits q on whitespace into lowercase terms.
func Terms(q string) []string {
	return strings.Fields(strings.ToLower(q))
}

func (l Limits) withDefaults() Limits {
	def := DefaultLimits()
	if l.DefaultLimit <= 0 {
		l.DefaultLimit = def.DefaultLimit
	}
	if l.MaxLimit <= 0 {
		l.MaxLimit = def.MaxLimit
	}
	if l.FullLimit <= 0 {
		l.FullLimit = def.FullLimit
	}
	if l.DefaultLimit > l.MaxLimit {
		l.DefaultLimit = l.MaxLimit
	}
	return l
}
