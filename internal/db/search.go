package db

import (
	"errors"

	"github.com/kailas-cloud/figdex/internal/domain/search/filter"
)

// ClauseKind selects how a text clause matches.
type ClauseKind int

const (
	// ClauseAutocomplete matches each token by prefix or within Fuzziness edits.
	ClauseAutocomplete ClauseKind = iota
	// ClauseInfix matches each token anywhere inside an indexed term, not fuzzy.
	ClauseInfix
	// ClauseExact matches a tag field exactly (case-insensitive).
	ClauseExact
)

// Clause is one score-contributing condition on a single field.
type Clause struct {
	Kind      ClauseKind
	Field     string
	Text      string
	Fuzziness int     // max edit distance, autocomplete only
	Weight    float64 // score multiplier, 0 means 1
}

// Disjunction matches when any of its clauses match; scores accumulate.
type Disjunction []Clause

// RankedQuery is the input for a relevance-ranked search. Filters restrict,
// every Required group must match, Optional clauses only add score.
// Results are ordered by native score, highest first.
type RankedQuery struct {
	IndexName string
	Filters   filter.Expression
	Required  []Disjunction
	Optional  []Clause
	Offset    int
	Limit     int
}

// Validate checks that the query can be sent to a backend.
func (q *RankedQuery) Validate() error {
	if q.IndexName == "" {
		return errors.New("index name is required")
	}
	if q.Limit <= 0 {
		return errors.New("limit must be positive")
	}
	if q.Offset < 0 {
		return errors.New("offset must not be negative")
	}
	if len(q.Required) == 0 {
		return errors.New("at least one required clause group is needed")
	}
	for _, group := range q.Required {
		if len(group) == 0 {
			return errors.New("required clause group is empty")
		}
		for _, c := range group {
			if c.Field == "" || c.Text == "" {
				return errors.New("clause field and text are required")
			}
		}
	}
	return nil
}

// EffectiveWeight returns the clause weight, defaulting to 1.
func (c Clause) EffectiveWeight() float64 {
	if c.Weight <= 0 {
		return 1
	}
	return c.Weight
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// MatchMode selects how a Predicate term matches a column.
type MatchMode int

const (
	// MatchSubstring matches the term anywhere in the value.
	MatchSubstring MatchMode = iota
	// MatchWordPrefix matches at the start of the value or after a space.
	MatchWordPrefix
)

// Predicate is a case-insensitive text filter over flat columns of the
// primary store: every term must match at least one of Fields.
type Predicate struct {
	Terms  []string
	Fields []string
	Mode   MatchMode
}

// Validate checks the predicate is usable.
func (p *Predicate) Validate() error {
	if len(p.Terms) == 0 {
		return errors.New("at least one term is required")
	}
	if len(p.Fields) == 0 {
		return errors.New("at least one field is required")
	}
	return nil
}

// Flat fields of the primary store a Predicate may reference. Manufacturer,
// location and box number are the effective values (legacy field else the
// structured fallback).
const (
	FieldName         = "name"
	FieldManufacturer = "manufacturer"
	FieldScale        = "scale"
	FieldLocation     = "location"
	FieldBoxNumber    = "box_number"
	FieldOrigin       = "origin"
	FieldCategory     = "category"
	FieldVersion      = "version"
)
