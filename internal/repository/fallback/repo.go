// Package fallback answers search requests from the primary store when the
// managed index is off or failing: filter candidates with LIKE predicates,
// score them locally, sort, slice.
package fallback

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/figdex/internal/db"
	"github.com/kailas-cloud/figdex/internal/domain/figure"
	"github.com/kailas-cloud/figdex/internal/domain/search/request"
	"github.com/kailas-cloud/figdex/internal/domain/search/result"
	"github.com/kailas-cloud/figdex/internal/domain/search/score"
	"github.com/kailas-cloud/figdex/internal/domain/search/shape"
)

// Defaults for candidate over-fetching.
const (
	DefaultOverfetchFactor = 3
	DefaultMaxCandidates   = 300
)

// Fields the word-wheel and partial predicates look at. They are the fields
// the scorer rewards, so a candidate that passes the filter can score.
var scoredFields = []string{
	db.FieldName, db.FieldManufacturer, db.FieldScale, db.FieldLocation, db.FieldBoxNumber,
}

// Full search also accepts matches on descriptive fields.
var fullFields = append(append([]string(nil), scoredFields...),
	db.FieldOrigin, db.FieldCategory, db.FieldVersion)

// finder is the consumer interface for candidate retrieval (ISP).
type finder interface {
	FindFiltered(ctx context.Context, ownerID string, p db.Predicate, limit int) ([]figure.Figure, error)
}

// Options tunes candidate retrieval.
type Options struct {
	OverfetchFactor int
	MaxCandidates   int
}

// Repo implements usecase/search.RankedSearch over the primary store.
type Repo struct {
	store finder
	opts  Options
}

// New creates a fallback search repository. Zero options take the defaults.
func New(s finder, opts Options) *Repo {
	if opts.OverfetchFactor <= 0 {
		opts.OverfetchFactor = DefaultOverfetchFactor
	}
	if opts.MaxCandidates <= 0 {
		opts.MaxCandidates = DefaultMaxCandidates
	}
	return &Repo{store: s, opts: opts}
}

// Search retrieves candidates, scores each against the query terms, sorts
// by score (stable, so ties keep retrieval order) and returns the page.
func (r *Repo) Search(ctx context.Context, req *request.Request) ([]result.Record, error) {
	pred, err := Predicate(req)
	if err != nil {
		return nil, err
	}

	candidates, err := r.store.FindFiltered(ctx, req.OwnerID(), pred, r.candidateLimit(req))
	if err != nil {
		return nil, fmt.Errorf("fallback %s search: %w", req.Shape(), err)
	}

	terms := req.Terms()
	records := make([]result.Record, 0, len(candidates))
	for i := range candidates {
		f := &candidates[i]
		s := score.ComputeTerms(score.Candidate{
			Name:         f.Name,
			Manufacturer: f.ManufacturerName(),
			Scale:        f.Scale,
			Location:     f.ResolvedLocation(),
			BoxNumber:    f.ResolvedBoxNumber(),
		}, terms)
		records = append(records, result.FromFigure(f, s))
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].SearchScore > records[j].SearchScore
	})

	return window(records, req.Offset(), req.Limit()), nil
}

// candidateLimit over-fetches relative to the requested window, capped absolutely.
func (r *Repo) candidateLimit(req *request.Request) int {
	return min(req.Window()*r.opts.OverfetchFactor, r.opts.MaxCandidates)
}

// Predicate builds the candidate filter for a request:
//
//   - word-wheel: the whole query starts a word in one of the scored fields;
//   - partial: the whole query appears inside one of the scored fields;
//   - full: every term appears inside one of the scored or descriptive fields.
func Predicate(req *request.Request) (db.Predicate, error) {
	switch req.Shape() {
	case shape.WordWheel:
		return db.Predicate{
			Terms:  []string{strings.Join(req.Terms(), " ")},
			Fields: scoredFields,
			Mode:   db.MatchWordPrefix,
		}, nil
	case shape.Partial:
		return db.Predicate{
			Terms:  []string{strings.ToLower(req.Query())},
			Fields: scoredFields,
			Mode:   db.MatchSubstring,
		}, nil
	case shape.Full:
		return db.Predicate{Terms: req.Terms(), Fields: fullFields, Mode: db.MatchSubstring}, nil
	default:
		return db.Predicate{}, fmt.Errorf("unsupported shape: %s", req.Shape())
	}
}

func window(records []result.Record, offset, limit int) []result.Record {
	if offset >= len(records) {
		return []result.Record{}
	}
	end := min(offset+limit, len(records))
	return records[offset:end]
}
