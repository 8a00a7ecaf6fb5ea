package db

import (
	"errors"
	"strconv"
)

// StorageType defines the document storage backend for FT indexes.
type StorageType string

const (
	// StorageHash stores documents as Redis hashes.
	StorageHash StorageType = "HASH"
)

// IndexFieldType enumerates supported index field types.
type IndexFieldType int

const (
	// IndexFieldNumeric is a numeric field.
	IndexFieldNumeric IndexFieldType = iota
	// IndexFieldTag is an exact-match field.
	IndexFieldTag
	// IndexFieldText is a tokenized full-text field.
	IndexFieldText
	// IndexFieldStored is kept with the document but not searchable.
	IndexFieldStored
)

// IndexField describes a single field in an index schema.
type IndexField struct {
	Name  string
	Alias string // AS alias in FT.CREATE SCHEMA
	Type  IndexFieldType

	// TAG options
	TagSeparator     string
	TagCaseSensitive bool

	// TEXT options
	Weight float64 // 0 means backend default
}

// IndexDefinition is a complete index definition.
type IndexDefinition struct {
	Name        string
	StorageType StorageType
	Prefixes    []string
	Fields      []IndexField
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]bool)
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return errors.New("field name is required at index " + strconv.Itoa(i))
		}
		key := f.FieldName()
		if seen[key] {
			return errors.New("duplicate field name: " + key)
		}
		seen[key] = true

		if f.Weight < 0 {
			return errors.New("field weight must not be negative: " + key)
		}
	}

	return nil
}

// FieldName returns the name queries refer to the field by.
func (f *IndexField) FieldName() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// Field looks up a field by its query name.
func (idx *IndexDefinition) Field(name string) (IndexField, bool) {
	for _, f := range idx.Fields {
		if f.FieldName() == name {
			return f, true
		}
	}
	return IndexField{}, false
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
