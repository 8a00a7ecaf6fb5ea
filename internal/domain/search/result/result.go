package result

import "github.com/kailas-cloud/figdex/internal/domain/figure"

// Record is one ranked search hit as returned to callers.
// SearchScore is backend-specific; only the order within one response is meaningful.
type Record struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Manufacturer string               `json:"manufacturer"`
	Scale        string               `json:"scale,omitempty"`
	Link         string               `json:"mfcLink,omitempty"`
	ImageURL     string               `json:"imageUrl,omitempty"`
	Origin       string               `json:"origin,omitempty"`
	Category     string               `json:"category,omitempty"`
	Tags         []string             `json:"tags,omitempty"`
	CompanyRoles []figure.CompanyRole `json:"companyRoles,omitempty"`
	ArtistRoles  []figure.ArtistRole  `json:"artistRoles,omitempty"`
	SearchScore  float64              `json:"searchScore"`
}

// FromFigure builds a record from a source figure.
func FromFigure(f *figure.Figure, score float64) Record {
	return Record{
		ID:           f.ID,
		Name:         f.Name,
		Manufacturer: f.ManufacturerName(),
		Scale:        f.Scale,
		Link:         f.Link,
		ImageURL:     f.ImageURL,
		Origin:       f.Origin,
		Category:     f.Category,
		Tags:         f.Tags,
		CompanyRoles: f.CompanyRoles,
		ArtistRoles:  f.ArtistRoles,
		SearchScore:  score,
	}
}
