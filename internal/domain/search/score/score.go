// Package score implements the fallback relevance model used when the
// managed search index is unavailable. It is a fixed weight table over plain
// string matches, tuned to order results the way the managed index does.
package score

import (
	"math"
	"strings"
)

// Weights of each rule, per query term.
const (
	ScaleExact           = 2.0
	NameWordBoundary     = 1.5
	NameSubstring        = 1.0
	ManufacturerBoundary = 1.25
	ManufacturerContains = 0.75
	LocationContains     = 0.5
	BoxNumberContains    = 0.5
)

// Candidate is the flat view of a figure the scorer reads.
type Candidate struct {
	Name         string
	Manufacturer string
	Scale        string
	Location     string
	BoxNumber    string
}

// Compute scores c against query. The query is split into lowercase terms on
// whitespace; every term is scored against every rule and the sum is rounded
// to two decimals.
func Compute(c Candidate, query string) float64 {
	return ComputeTerms(c, strings.Fields(strings.ToLower(query)))
}

// ComputeTerms scores c against already-lowercased terms.
func ComputeTerms(c Candidate, terms []string) float64 {
	name := strings.ToLower(c.Name)
	manufacturer := strings.ToLower(c.Manufacturer)
	scale := strings.ToLower(c.Scale)
	location := strings.ToLower(c.Location)
	box := strings.ToLower(c.BoxNumber)

	var total float64
	for _, term := range terms {
		if term == "" {
			continue
		}

		if scale == term {
			total += ScaleExact
		}

		switch {
		case wordBoundaryMatch(name, term):
			total += NameWordBoundary
		case strings.Contains(name, term):
			total += NameSubstring
		}

		switch {
		case wordBoundaryMatch(manufacturer, term):
			total += ManufacturerBoundary
		case strings.Contains(manufacturer, term):
			total += ManufacturerContains
		}

		if location != "" && strings.Contains(location, term) {
			total += LocationContains
		}
		if box != "" && strings.Contains(box, term) {
			total += BoxNumberContains
		}
	}

	return Round(total)
}

// Round rounds to two decimal places.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

// wordBoundaryMatch reports whether s starts with term or contains " "+term.
func wordBoundaryMatch(s, term string) bool {
	return strings.HasPrefix(s, term) || strings.Contains(s, " "+term)
}
