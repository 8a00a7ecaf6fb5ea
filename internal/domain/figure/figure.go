package figure

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/figdex/internal/domain"
)

// RoleManufacturer is the company role that names a figure's manufacturer.
const RoleManufacturer = "Manufacturer"

// Tag groups whose values stand in for the legacy flat fields.
const (
	TagGroupLocation = "location"
	TagGroupBox      = "box"
)

// CompanyRole links a company to a figure in a given capacity.
type CompanyRole struct {
	Company string `json:"companyName"`
	Role    string `json:"roleName"`
}

// ArtistRole links an artist to a figure in a given capacity.
type ArtistRole struct {
	Artist string `json:"artistName"`
	Role   string `json:"roleName"`
}

// Release is one release of a figure. Both fields are optional.
type Release struct {
	Barcode string    `json:"barcode,omitempty"`
	Date    time.Time `json:"date,omitzero"`
}

// Figure is a collectible owned by a single user.
type Figure struct {
	ID             string
	OwnerID        string
	Name           string
	AltTitle       string
	Manufacturer   string // legacy scalar, may be empty
	CompanyRoles   []CompanyRole
	ArtistRoles    []ArtistRole
	Scale          string
	Origin         string
	Version        string
	Category       string
	Classification string
	Materials      string
	Releases       []Release
	Tags           []string // bare token or group:value
	Location       string   // legacy flat field
	BoxNumber      string   // legacy flat field
	Link           string
	ImageURL       string
	Popularity     int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Validate checks the fields every persisted figure must have.
func (f *Figure) Validate() error {
	if strings.TrimSpace(f.OwnerID) == "" {
		return fmt.Errorf("%w: owner id is required", domain.ErrInvalidFigure)
	}
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidFigure)
	}
	return nil
}

// ManufacturerName returns the legacy manufacturer when set, otherwise the
// company holding the Manufacturer role, otherwise the first company.
func (f *Figure) ManufacturerName() string {
	if f.Manufacturer != "" {
		return f.Manufacturer
	}
	return ManufacturerFromRoles(f.CompanyRoles)
}

// ResolvedLocation returns the legacy location, or the first location: tag value.
func (f *Figure) ResolvedLocation() string {
	if f.Location != "" {
		return f.Location
	}
	return firstTagValue(f.Tags, TagGroupLocation)
}

// ResolvedBoxNumber returns the legacy box number, or the first box: tag value.
func (f *Figure) ResolvedBoxNumber() string {
	if f.BoxNumber != "" {
		return f.BoxNumber
	}
	return firstTagValue(f.Tags, TagGroupBox)
}

// ManufacturerFromRoles picks the Manufacturer-role company, else the first one.
func ManufacturerFromRoles(roles []CompanyRole) string {
	for _, r := range roles {
		if strings.EqualFold(r.Role, RoleManufacturer) {
			return r.Company
		}
	}
	if len(roles) > 0 {
		return roles[0].Company
	}
	return ""
}

// SplitTag splits "group:value" into its parts. Bare tags have an empty group.
func SplitTag(tag string) (group, value string) {
	g, v, ok := strings.Cut(tag, ":")
	if !ok {
		return "", tag
	}
	return g, v
}

// StripTagGroup drops the "group:" prefix of a tag.
func StripTagGroup(tag string) string {
	_, v := SplitTag(tag)
	return v
}

func firstTagValue(tags []string, group string) string {
	for _, t := range tags {
		g, v := SplitTag(t)
		if strings.EqualFold(g, group) && v != "" {
			return v
		}
	}
	return ""
}
