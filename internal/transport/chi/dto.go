package chi

import (
	"time"

	"github.com/kailas-cloud/figdex/internal/domain/figure"
	"github.com/kailas-cloud/figdex/internal/domain/search/result"
)

// Error codes returned in ErrorResponse.Code.
const (
	codeBadRequest   = "bad_request"
	codeValidation   = "validation_failed"
	codeUnauthorized = "unauthorized"
	codeNotFound     = "figure_not_found"
	codeConflict     = "figure_conflict"
	codeTimeout      = "timeout"
	codeRateLimited  = "rate_limited"
	codeInternal     = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Items []result.Record `json:"items"`
	Total int             `json:"total"`
}

// FigureListResponse wraps a page of figures.
type FigureListResponse struct {
	Items  []FigureBody `json:"items"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// ResyncResponse reports an owner resync.
type ResyncResponse struct {
	Figures int `json:"figures"`
	Indexed int `json:"indexed"`
	Failed  int `json:"failed"`
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ReleaseBody is one release in a FigureBody.
type ReleaseBody struct {
	Barcode string `json:"barcode,omitempty"`
	Date    string `json:"date,omitempty"` // YYYY-MM-DD
}

// FigureBody is the JSON form of a figure, used for requests and responses.
type FigureBody struct {
	ID             string               `json:"id,omitempty"`
	Name           string               `json:"name"`
	AltTitle       string               `json:"altTitle,omitempty"`
	Manufacturer   string               `json:"manufacturer,omitempty"`
	CompanyRoles   []figure.CompanyRole `json:"companyRoles,omitempty"`
	ArtistRoles    []figure.ArtistRole  `json:"artistRoles,omitempty"`
	Scale          string               `json:"scale,omitempty"`
	Origin         string               `json:"origin,omitempty"`
	Version        string               `json:"version,omitempty"`
	Category       string               `json:"category,omitempty"`
	Classification string               `json:"classification,omitempty"`
	Materials      string               `json:"materials,omitempty"`
	Releases       []ReleaseBody        `json:"releases,omitempty"`
	Tags           []string             `json:"tags,omitempty"`
	Location       string               `json:"location,omitempty"`
	BoxNumber      string               `json:"boxNumber,omitempty"`
	Link           string               `json:"mfcLink,omitempty"`
	ImageURL       string               `json:"imageUrl,omitempty"`
	Popularity     int64                `json:"popularity,omitempty"`
	CreatedAt      *time.Time           `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time           `json:"updatedAt,omitempty"`
}

const releaseDateLayout = "2006-01-02"

func figureFromBody(b *FigureBody, ownerID string) (figure.Figure, error) {
	releases := make([]figure.Release, 0, len(b.Releases))
	for _, r := range b.Releases {
		rel := figure.Release{Barcode: r.Barcode}
		if r.Date != "" {
			d, err := time.Parse(releaseDateLayout, r.Date)
			if err != nil {
				return figure.Figure{}, err
			}
			rel.Date = d
		}
		releases = append(releases, rel)
	}

	return figure.Figure{
		ID:             b.ID,
		OwnerID:        ownerID,
		Name:           b.Name,
		AltTitle:       b.AltTitle,
		Manufacturer:   b.Manufacturer,
		CompanyRoles:   b.CompanyRoles,
		ArtistRoles:    b.ArtistRoles,
		Scale:          b.Scale,
		Origin:         b.Origin,
		Version:        b.Version,
		Category:       b.Category,
		Classification: b.Classification,
		Materials:      b.Materials,
		Releases:       releases,
		Tags:           b.Tags,
		Location:       b.Location,
		BoxNumber:      b.BoxNumber,
		Link:           b.Link,
		ImageURL:       b.ImageURL,
		Popularity:     b.Popularity,
	}, nil
}

func figureToBody(f *figure.Figure) FigureBody {
	var releases []ReleaseBody
	for _, r := range f.Releases {
		rb := ReleaseBody{Barcode: r.Barcode}
		if !r.Date.IsZero() {
			rb.Date = r.Date.UTC().Format(releaseDateLayout)
		}
		releases = append(releases, rb)
	}

	body := FigureBody{
		ID:             f.ID,
		Name:           f.Name,
		AltTitle:       f.AltTitle,
		Manufacturer:   f.Manufacturer,
		CompanyRoles:   f.CompanyRoles,
		ArtistRoles:    f.ArtistRoles,
		Scale:          f.Scale,
		Origin:         f.Origin,
		Version:        f.Version,
		Category:       f.Category,
		Classification: f.Classification,
		Materials:      f.Materials,
		Releases:       releases,
		Tags:           f.Tags,
		Location:       f.Location,
		BoxNumber:      f.BoxNumber,
		Link:           f.Link,
		ImageURL:       f.ImageURL,
		Popularity:     f.Popularity,
	}
	if !f.CreatedAt.IsZero() {
		t := f.CreatedAt.UTC()
		body.CreatedAt = &t
	}
	if !f.UpdatedAt.IsZero() {
		t := f.UpdatedAt.UTC()
		body.UpdatedAt = &t
	}
	return body
}
