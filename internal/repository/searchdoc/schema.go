package searchdoc

import "github.com/kailas-cloud/figdex/internal/db"

// Hash field names of a stored SearchDocument.
const (
	FieldEntityType      = "entityType"
	FieldEntityID        = "entityId"
	FieldUserID          = "userId"
	FieldSearchText      = "searchText"
	FieldNameSearchable  = "nameSearchable"
	FieldFigureName      = "figureName"
	FieldManufacturer    = "manufacturer"
	FieldScale           = "scale"
	FieldScaleKey        = "scaleKey" // lowercased scale, exact-match tag
	FieldOrigin          = "origin"
	FieldCategory        = "category"
	FieldLink            = "link"
	FieldImageURL        = "imageUrl"
	FieldCompanyRoles    = "companyRoles"
	FieldArtistRoles     = "artistRoles"
	FieldReleaseBarcodes = "releaseBarcodes"
	FieldReleaseDates    = "releaseDates"
	FieldTags            = "tags"
	FieldPopularity      = "popularity"
	FieldUpdatedAt       = "updatedAt"
)

// ownerSeparator never occurs in ids, so owner and entity tags are matched
// whole and case-sensitively.
const ownerSeparator = "\x1f"

// Keys derives storage keys and the index name from a configured prefix.
type Keys struct {
	Prefix    string
	IndexName string
}

// DocPrefix is the key prefix every SearchDocument lives under.
func (k Keys) DocPrefix() string {
	return k.Prefix + "doc:"
}

// Doc returns the storage key of one document.
func (k Keys) Doc(kind, id string) string {
	return k.DocPrefix() + kind + ":" + id
}

// IndexDefinition describes the full-text index over SearchDocuments:
// owner and kind are filter tags (owner and entity id are exact), searchText and nameSearchable are the
// ranked text fields, scaleKey carries the exact scale match, the rest is
// stored for mapping hits back without a second lookup.
func (k Keys) IndexDefinition() (*db.IndexDefinition, error) {
	return db.NewIndex(k.IndexName).
		OnHash().
		Prefix(k.DocPrefix()).
		TagWithOpts(FieldUserID, ownerSeparator, true).
		Tag(FieldEntityType).
		TagWithOpts(FieldEntityID, ownerSeparator, true).
		Text(FieldSearchText).
		Text(FieldNameSearchable).
		Tag(FieldScaleKey).
		Numeric(FieldPopularity).
		Stored(FieldFigureName).
		Stored(FieldManufacturer).
		Stored(FieldScale).
		Stored(FieldOrigin).
		Stored(FieldCategory).
		Stored(FieldLink).
		Stored(FieldImageURL).
		Stored(FieldCompanyRoles).
		Stored(FieldArtistRoles).
		Stored(FieldReleaseBarcodes).
		Stored(FieldReleaseDates).
		Stored(FieldTags).
		Stored(FieldUpdatedAt).
		Build()
}
