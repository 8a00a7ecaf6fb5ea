package searchdoc

import (
	"testing"
	"time"

	"github.com/kailas-cloud/figdex/internal/domain/figure"
)

func sampleFigure() *figure.Figure {
	return &figure.Figure{
		ID:           "fig-1",
		OwnerID:      "u1",
		Name:         "  Hatsune Miku ",
		Manufacturer: "",
		CompanyRoles: []figure.CompanyRole{{Company: "Good Smile Company", Role: "Manufacturer"}},
		ArtistRoles:  []figure.ArtistRole{{Artist: "KEI", Role: "Illustrator"}},
		Origin:       "Vocaloid",
		Scale:        "1/8",
		Releases: []figure.Release{
			{Barcode: "4580416940238", Date: time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)},
			{},
		},
		Tags:       []string{"location:shelf A", "nendo"},
		Popularity: 42,
	}
}

func TestBuildSearchText(t *testing.T) {
	got := BuildSearchText(sampleFigure())
	want := "Good Smile Company KEI Hatsune Miku Vocaloid 1/8 4580416940238 shelf A nendo"
	if got != want {
		t.Errorf("BuildSearchText() =\n%q\nwant\n%q", got, want)
	}
}

func TestBuildSearchText_Empty(t *testing.T) {
	if got := BuildSearchText(&figure.Figure{}); got != "" {
		t.Errorf("BuildSearchText() = %q, want empty", got)
	}
}

func TestFromFigure(t *testing.T) {
	f := sampleFigure()
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 3600))

	d := FromFigure(f, now)

	if d.EntityType != KindFigure || d.EntityID != "fig-1" || d.UserID != "u1" {
		t.Errorf("identity = %s/%s/%s", d.EntityType, d.EntityID, d.UserID)
	}
	if d.Key() != "figure:fig-1" {
		t.Errorf("Key() = %q", d.Key())
	}
	if d.NameSearchable != "hatsune miku" {
		t.Errorf("NameSearchable = %q", d.NameSearchable)
	}
	if d.Manufacturer() != "Good Smile Company" {
		t.Errorf("Manufacturer() = %q", d.Manufacturer())
	}
	if len(d.ReleaseBarcodes) != 1 || d.ReleaseBarcodes[0] != "4580416940238" {
		t.Errorf("ReleaseBarcodes = %v", d.ReleaseBarcodes)
	}
	if len(d.ReleaseDates) != 1 || d.ReleaseDates[0] != "2020-05-01" {
		t.Errorf("ReleaseDates = %v", d.ReleaseDates)
	}
	if d.Popularity != 42 {
		t.Errorf("Popularity = %d", d.Popularity)
	}
	if d.UpdatedAt.Location() != time.UTC {
		t.Errorf("UpdatedAt not UTC: %v", d.UpdatedAt)
	}
}

func TestDocument_Manufacturer(t *testing.T) {
	legacy := FromFigure(&figure.Figure{ID: "a", OwnerID: "u1", Manufacturer: "Alter"}, time.Now())
	if legacy.Manufacturer() != "Alter" {
		t.Errorf("legacy Manufacturer() = %q", legacy.Manufacturer())
	}

	rolesOnly := Document{CompanyRoles: []figure.CompanyRole{{Company: "Kotobukiya", Role: "Manufacturer"}}}
	if rolesOnly.Manufacturer() != "Kotobukiya" {
		t.Errorf("roles Manufacturer() = %q", rolesOnly.Manufacturer())
	}
}

func TestFromFigure_CopiesSlices(t *testing.T) {
	f := sampleFigure()
	d := FromFigure(f, time.Now())

	f.Tags[0] = "changed"
	f.CompanyRoles[0].Company = "changed"

	if d.Tags[0] != "location:shelf A" {
		t.Errorf("Tags aliased source: %v", d.Tags)
	}
	if d.CompanyRoles[0].Company != "Good Smile Company" {
		t.Errorf("CompanyRoles aliased source: %v", d.CompanyRoles)
	}
}
