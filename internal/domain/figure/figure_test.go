package figure

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/figdex/internal/domain"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		fig     Figure
		wantErr bool
	}{
		{"valid", Figure{OwnerID: "u1", Name: "Miku"}, false},
		{"missing owner", Figure{Name: "Miku"}, true},
		{"blank name", Figure{OwnerID: "u1", Name: "   "}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fig.Validate()
			if tt.wantErr && !errors.Is(err, domain.ErrInvalidFigure) {
				t.Errorf("err = %v, want ErrInvalidFigure", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestManufacturerName(t *testing.T) {
	tests := []struct {
		name string
		fig  Figure
		want string
	}{
		{"legacy field wins", Figure{
			Manufacturer: "Alter",
			CompanyRoles: []CompanyRole{{Company: "GSC", Role: RoleManufacturer}},
		}, "Alter"},
		{"manufacturer role", Figure{
			CompanyRoles: []CompanyRole{
				{Company: "Aniplex", Role: "Distributor"},
				{Company: "GSC", Role: "manufacturer"},
			},
		}, "GSC"},
		{"first company", Figure{
			CompanyRoles: []CompanyRole{{Company: "Aniplex", Role: "Distributor"}},
		}, "Aniplex"},
		{"none", Figure{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fig.ManufacturerName(); got != tt.want {
				t.Errorf("ManufacturerName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolvedLocationAndBox(t *testing.T) {
	f := Figure{Tags: []string{"nendo", "location:Shelf A", "BOX:12", "location:Shelf B"}}
	if got := f.ResolvedLocation(); got != "Shelf A" {
		t.Errorf("ResolvedLocation() = %q", got)
	}
	if got := f.ResolvedBoxNumber(); got != "12" {
		t.Errorf("ResolvedBoxNumber() = %q", got)
	}

	f.Location = "Closet"
	f.BoxNumber = "7"
	if f.ResolvedLocation() != "Closet" || f.ResolvedBoxNumber() != "7" {
		t.Error("legacy fields should win over tags")
	}
}

func TestSplitTag(t *testing.T) {
	tests := []struct {
		tag, group, value string
	}{
		{"nendo", "", "nendo"},
		{"location:Shelf A", "location", "Shelf A"},
		{"a:b:c", "a", "b:c"},
	}
	for _, tt := range tests {
		g, v := SplitTag(tt.tag)
		if g != tt.group || v != tt.value {
			t.Errorf("SplitTag(%q) = %q, %q", tt.tag, g, v)
		}
		if StripTagGroup(tt.tag) != tt.value {
			t.Errorf("StripTagGroup(%q) = %q", tt.tag, StripTagGroup(tt.tag))
		}
	}
}
