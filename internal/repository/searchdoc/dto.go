package searchdoc

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	domdoc "github.com/kailas-cloud/figdex/internal/domain/searchdoc"
)

// buildHashFields flattens a Document for storage. Every field is always
// written, so a put fully replaces the previous version.
func buildHashFields(doc *domdoc.Document) (map[string]string, error) {
	companyRoles, err := marshalList(doc.CompanyRoles)
	if err != nil {
		return nil, fmt.Errorf("marshal company roles: %w", err)
	}
	artistRoles, err := marshalList(doc.ArtistRoles)
	if err != nil {
		return nil, fmt.Errorf("marshal artist roles: %w", err)
	}
	barcodes, err := marshalList(doc.ReleaseBarcodes)
	if err != nil {
		return nil, fmt.Errorf("marshal release barcodes: %w", err)
	}
	dates, err := marshalList(doc.ReleaseDates)
	if err != nil {
		return nil, fmt.Errorf("marshal release dates: %w", err)
	}
	tags, err := marshalList(doc.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}

	return map[string]string{
		FieldEntityType:      doc.EntityType,
		FieldEntityID:        doc.EntityID,
		FieldUserID:          doc.UserID,
		FieldSearchText:      doc.SearchText,
		FieldNameSearchable:  doc.NameSearchable,
		FieldFigureName:      doc.FigureName,
		FieldManufacturer:    doc.ManufacturerName,
		FieldScale:           doc.Scale,
		FieldScaleKey:        strings.ToLower(strings.TrimSpace(doc.Scale)),
		FieldOrigin:          doc.Origin,
		FieldCategory:        doc.Category,
		FieldLink:            doc.Link,
		FieldImageURL:        doc.ImageURL,
		FieldCompanyRoles:    companyRoles,
		FieldArtistRoles:     artistRoles,
		FieldReleaseBarcodes: barcodes,
		FieldReleaseDates:    dates,
		FieldTags:            tags,
		FieldPopularity:      strconv.FormatInt(doc.Popularity, 10),
		FieldUpdatedAt:       doc.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}

// ParseHashFields rebuilds a Document from stored fields. Missing or
// malformed optional fields are left empty rather than failing the read.
func ParseHashFields(m map[string]string) domdoc.Document {
	doc := domdoc.Document{
		EntityType:       m[FieldEntityType],
		EntityID:         m[FieldEntityID],
		UserID:           m[FieldUserID],
		SearchText:       m[FieldSearchText],
		NameSearchable:   m[FieldNameSearchable],
		FigureName:       m[FieldFigureName],
		ManufacturerName: m[FieldManufacturer],
		Scale:            m[FieldScale],
		Origin:           m[FieldOrigin],
		Category:         m[FieldCategory],
		Link:             m[FieldLink],
		ImageURL:         m[FieldImageURL],
	}

	unmarshalList(m[FieldCompanyRoles], &doc.CompanyRoles)
	unmarshalList(m[FieldArtistRoles], &doc.ArtistRoles)
	unmarshalList(m[FieldReleaseBarcodes], &doc.ReleaseBarcodes)
	unmarshalList(m[FieldReleaseDates], &doc.ReleaseDates)
	unmarshalList(m[FieldTags], &doc.Tags)

	if p, err := strconv.ParseInt(m[FieldPopularity], 10, 64); err == nil {
		doc.Popularity = p
	}
	if ts, err := time.Parse(time.RFC3339Nano, m[FieldUpdatedAt]); err == nil {
		doc.UpdatedAt = ts
	}
	return doc
}

func marshalList[T any](v []T) (string, error) {
	if len(v) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalList[T any](s string, dst *[]T) {
	if s == "" || s == "[]" {
		return
	}
	var v []T
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		*dst = v
	}
}
