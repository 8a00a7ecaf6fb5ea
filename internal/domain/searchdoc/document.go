// Package searchdoc holds the denormalized, search-only projection of a figure.
package searchdoc

import (
	"strings"
	"time"

	"github.com/kailas-cloud/figdex/internal/domain/figure"
)

// KindFigure is the entity kind of documents derived from figures.
const KindFigure = "figure"

// releaseDateLayout is how release dates are kept on the document.
const releaseDateLayout = "2006-01-02"

// Document is one SearchIndex record, keyed by (EntityType, EntityID).
type Document struct {
	EntityType       string
	EntityID         string
	UserID           string
	SearchText       string
	NameSearchable   string
	FigureName       string
	ManufacturerName string // effective manufacturer, legacy field first
	Scale            string
	Origin           string
	Category         string
	Link             string
	ImageURL         string
	CompanyRoles     []figure.CompanyRole
	ArtistRoles      []figure.ArtistRole
	ReleaseBarcodes  []string
	ReleaseDates     []string
	Tags             []string
	Popularity       int64
	UpdatedAt        time.Time
}

// FromFigure derives the search document for f.
func FromFigure(f *figure.Figure, now time.Time) Document {
	barcodes, dates := releaseFields(f.Releases)
	return Document{
		EntityType:       KindFigure,
		EntityID:         f.ID,
		UserID:           f.OwnerID,
		SearchText:       BuildSearchText(f),
		NameSearchable:   NormalizeName(f.Name),
		FigureName:       f.Name,
		ManufacturerName: f.ManufacturerName(),
		Scale:            f.Scale,
		Origin:           f.Origin,
		Category:         f.Category,
		Link:             f.Link,
		ImageURL:         f.ImageURL,
		CompanyRoles:     append([]figure.CompanyRole(nil), f.CompanyRoles...),
		ArtistRoles:      append([]figure.ArtistRole(nil), f.ArtistRoles...),
		ReleaseBarcodes:  barcodes,
		ReleaseDates:     dates,
		Tags:             append([]string(nil), f.Tags...),
		Popularity:       f.Popularity,
		UpdatedAt:        now.UTC(),
	}
}

// BuildSearchText concatenates every searchable field of f, in a fixed order,
// with single spaces. Empty fields contribute nothing.
func BuildSearchText(f *figure.Figure) string {
	parts := make([]string, 0, 16+len(f.CompanyRoles)+len(f.ArtistRoles)+len(f.Releases)+len(f.Tags))
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}

	for _, cr := range f.CompanyRoles {
		add(cr.Company)
	}
	add(f.Manufacturer)
	for _, ar := range f.ArtistRoles {
		add(ar.Artist)
	}
	for _, s := range []string{
		f.Name, f.AltTitle, f.Origin, f.Version, f.Category,
		f.Classification, f.Scale, f.Materials,
	} {
		add(s)
	}
	for _, r := range f.Releases {
		add(r.Barcode)
	}
	for _, t := range f.Tags {
		add(figure.StripTagGroup(t))
	}

	return strings.Join(parts, " ")
}

// NormalizeName lowercases and trims a figure name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Key returns the storage key suffix "<kind>:<id>".
func (d *Document) Key() string {
	return d.EntityType + ":" + d.EntityID
}

// Manufacturer returns the stored effective manufacturer. Documents written
// without one fall back to the denormalized company roles.
func (d *Document) Manufacturer() string {
	if d.ManufacturerName != "" {
		return d.ManufacturerName
	}
	return figure.ManufacturerFromRoles(d.CompanyRoles)
}

func releaseFields(releases []figure.Release) (barcodes, dates []string) {
	for _, r := range releases {
		if r.Barcode != "" {
			barcodes = append(barcodes, r.Barcode)
		}
		if !r.Date.IsZero() {
			dates = append(dates, r.Date.UTC().Format(releaseDateLayout))
		}
	}
	return barcodes, dates
}
