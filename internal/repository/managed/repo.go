// Package managed runs search requests against the full-text index that
// holds SearchDocuments (Redis or bleve) and maps hits to result records.
package managed

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/figdex/internal/db"
	"github.com/kailas-cloud/figdex/internal/domain/search/filter"
	"github.com/kailas-cloud/figdex/internal/domain/search/request"
	"github.com/kailas-cloud/figdex/internal/domain/search/result"
	"github.com/kailas-cloud/figdex/internal/domain/search/shape"
	domdoc "github.com/kailas-cloud/figdex/internal/domain/searchdoc"
	"github.com/kailas-cloud/figdex/internal/repository/searchdoc"
)

// Ranking knobs shared by every shape.
const (
	autocompleteFuzziness = 1
	scaleBoost            = 2.0
)

// searcher is the consumer interface for ranked search (ISP).
type searcher interface {
	RankedSearch(ctx context.Context, q *db.RankedQuery) (*db.SearchResult, error)
}

// Repo implements usecase/search.RankedSearch on the managed index.
// Errors are returned as-is; the caller decides whether to fall back.
type Repo struct {
	store     searcher
	indexName string
}

// New creates a managed-index search repository.
func New(s searcher, indexName string) *Repo {
	return &Repo{store: s, indexName: indexName}
}

// Search runs req and returns records ordered by native score, highest first.
func (r *Repo) Search(ctx context.Context, req *request.Request) ([]result.Record, error) {
	q, err := BuildQuery(r.indexName, req)
	if err != nil {
		return nil, err
	}

	sr, err := r.store.RankedSearch(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("managed %s search: %w", req.Shape(), err)
	}

	records := make([]result.Record, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		records = append(records, toRecord(e))
	}
	return records, nil
}

// BuildQuery translates a request into a ranked query. Every shape is scoped
// to the owner and the figure kind.
//
//   - word-wheel: one of fuzzy autocomplete on searchText / nameSearchable,
//     or exact scale (boosted);
//   - partial: the same with non-fuzzy infix matching instead of autocomplete;
//   - full: every term must autocomplete on searchText or nameSearchable,
//     an exact scale match per term only adds score.
func BuildQuery(indexName string, req *request.Request) (*db.RankedQuery, error) {
	scope, err := filter.Scope(
		searchdoc.FieldUserID, req.OwnerID(),
		searchdoc.FieldEntityType, domdoc.KindFigure,
	)
	if err != nil {
		return nil, fmt.Errorf("owner scope: %w", err)
	}

	q := &db.RankedQuery{
		IndexName: indexName,
		Filters:   scope,
		Offset:    req.Offset(),
		Limit:     req.Limit(),
	}

	text := req.Query()
	switch req.Shape() {
	case shape.WordWheel:
		q.Required = []db.Disjunction{{
			autocomplete(searchdoc.FieldSearchText, text),
			autocomplete(searchdoc.FieldNameSearchable, text),
			scaleExact(text),
		}}
	case shape.Partial:
		q.Required = []db.Disjunction{{
			infix(searchdoc.FieldSearchText, text),
			infix(searchdoc.FieldNameSearchable, text),
			scaleExact(text),
		}}
	case shape.Full:
		for _, term := range req.Terms() {
			q.Required = append(q.Required, db.Disjunction{
				autocomplete(searchdoc.FieldSearchText, term),
				autocomplete(searchdoc.FieldNameSearchable, term),
			})
			q.Optional = append(q.Optional, scaleExact(term))
		}
	default:
		return nil, fmt.Errorf("unsupported shape: %s", req.Shape())
	}

	return q, nil
}

func autocomplete(field, text string) db.Clause {
	return db.Clause{Kind: db.ClauseAutocomplete, Field: field, Text: text, Fuzziness: autocompleteFuzziness}
}

func infix(field, text string) db.Clause {
	return db.Clause{Kind: db.ClauseInfix, Field: field, Text: text}
}

func scaleExact(text string) db.Clause {
	return db.Clause{Kind: db.ClauseExact, Field: searchdoc.FieldScaleKey, Text: text, Weight: scaleBoost}
}

// toRecord maps a hit back to the caller-facing shape.
func toRecord(e db.SearchEntry) result.Record {
	doc := searchdoc.ParseHashFields(e.Fields)
	return result.Record{
		ID:           doc.EntityID,
		Name:         doc.FigureName,
		Manufacturer: doc.Manufacturer(),
		Scale:        doc.Scale,
		Link:         doc.Link,
		ImageURL:     doc.ImageURL,
		Origin:       doc.Origin,
		Category:     doc.Category,
		Tags:         doc.Tags,
		CompanyRoles: doc.CompanyRoles,
		ArtistRoles:  doc.ArtistRoles,
		SearchScore:  e.Score,
	}
}
