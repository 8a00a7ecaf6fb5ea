package bleve

import (
	"context"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/kailas-cloud/figdex/internal/db"
	"github.com/kailas-cloud/figdex/internal/domain/search/filter"
)

// RankedSearch translates q into a bleve boolean query: filters and required
// groups are musts, optional clauses are shoulds that only add score.
// Field weights from the index definition multiply clause boosts.
func (s *Store) RankedSearch(ctx context.Context, q *db.RankedQuery) (*db.SearchResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	idx, def, err := s.current()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	if def.Name != q.IndexName {
		return nil, &db.Error{Op: db.OpSearch, Err: db.ErrIndexNotFound}
	}

	bq, ok := buildQuery(def, q)
	if !ok {
		return &db.SearchResult{}, nil
	}

	req := bleve.NewSearchRequestOptions(bq, q.Limit, q.Offset, false)
	req.Fields = []string{"*"}
	req.SortBy([]string{"-_score", "_id"})

	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	out := &db.SearchResult{
		Total:   int(res.Total),
		Entries: make([]db.SearchEntry, 0, len(res.Hits)),
	}
	for _, hit := range res.Hits {
		out.Entries = append(out.Entries, db.SearchEntry{
			Key:    hit.ID,
			Score:  hit.Score,
			Fields: fromBleveFields(hit.Fields),
		})
	}
	return out, nil
}

// buildQuery reports false when a required group has no matchable tokens.
func buildQuery(def *db.IndexDefinition, q *db.RankedQuery) (query.Query, bool) {
	root := bleve.NewBooleanQuery()

	addFilters(root, def, q.Filters)

	for _, group := range q.Required {
		var alts []query.Query
		for _, c := range group {
			if cq := buildClause(def, c); cq != nil {
				alts = append(alts, cq)
			}
		}
		if len(alts) == 0 {
			return nil, false
		}
		if len(alts) == 1 {
			root.AddMust(alts[0])
			continue
		}
		root.AddMust(bleve.NewDisjunctionQuery(alts...))
	}

	for _, c := range q.Optional {
		if cq := buildClause(def, c); cq != nil {
			root.AddShould(cq)
		}
	}

	return root, true
}

func addFilters(root *query.BooleanQuery, def *db.IndexDefinition, expr filter.Expression) {
	for _, cond := range expr.Must() {
		root.AddMust(tagQuery(def, cond.Key(), cond.Match()))
	}
	if should := expr.Should(); len(should) > 0 {
		alts := make([]query.Query, 0, len(should))
		for _, cond := range should {
			alts = append(alts, tagQuery(def, cond.Key(), cond.Match()))
		}
		root.AddMust(bleve.NewDisjunctionQuery(alts...))
	}
	for _, cond := range expr.MustNot() {
		root.AddMustNot(tagQuery(def, cond.Key(), cond.Match()))
	}
}

// tagQuery matches the whole value. Values are lowercased to line up with
// the tag analyzer unless the field is case-sensitive.
func tagQuery(def *db.IndexDefinition, field, value string) *query.TermQuery {
	if f, ok := def.Field(field); !ok || !f.TagCaseSensitive {
		value = strings.ToLower(value)
	}
	tq := bleve.NewTermQuery(value)
	tq.SetField(field)
	return tq
}

func buildClause(def *db.IndexDefinition, c db.Clause) query.Query {
	var q query.Query
	switch c.Kind {
	case db.ClauseExact:
		v := strings.TrimSpace(c.Text)
		if v == "" {
			return nil
		}
		q = tagQuery(def, c.Field, v)
	case db.ClauseInfix:
		q = perToken(c.Field, c.Text, func(field, tok string) query.Query {
			if len([]rune(tok)) < 2 {
				return termOn(field, tok)
			}
			wq := bleve.NewWildcardQuery("*" + tok + "*")
			wq.SetField(field)
			return wq
		})
	default:
		q = perToken(c.Field, c.Text, func(field, tok string) query.Query {
			return autocompleteToken(field, tok, c.Fuzziness)
		})
	}
	if q == nil {
		return nil
	}

	boost := c.EffectiveWeight()
	if f, ok := def.Field(c.Field); ok && f.Weight > 0 {
		boost *= f.Weight
	}
	if bq, ok := q.(query.BoostableQuery); ok && boost != 1 {
		bq.SetBoost(boost)
	}
	return q
}

// perToken requires every token of text to match on field.
func perToken(field, text string, render func(field, tok string) query.Query) query.Query {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	if len(tokens) == 1 {
		return render(field, tokens[0])
	}
	parts := make([]query.Query, len(tokens))
	for i, tok := range tokens {
		parts[i] = render(field, tok)
	}
	return bleve.NewConjunctionQuery(parts...)
}

// autocompleteToken matches tok as a prefix and, for tokens of three or more
// runes, within the given edit distance.
func autocompleteToken(field, tok string, fuzziness int) query.Query {
	n := len([]rune(tok))
	if n < 2 {
		return termOn(field, tok)
	}
	pq := bleve.NewPrefixQuery(tok)
	pq.SetField(field)
	if fuzziness <= 0 || n < 3 {
		return pq
	}
	if fuzziness > 2 {
		fuzziness = 2 // bleve's maximum
	}
	fq := bleve.NewFuzzyQuery(tok)
	fq.SetField(field)
	fq.SetFuzziness(fuzziness)
	return bleve.NewDisjunctionQuery(pq, fq)
}

func termOn(field, tok string) query.Query {
	tq := bleve.NewTermQuery(tok)
	tq.SetField(field)
	return tq
}

// tokenize lowercases s and splits on anything that is not a letter or digit,
// matching the unicode tokenizer used for text fields closely enough for
// prefix and fuzzy matching.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
