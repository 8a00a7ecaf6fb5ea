package db

import (
	"strconv"
	"strings"
)

// IndexBuilder is a fluent builder for index definitions.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts building an index definition.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{
		def: IndexDefinition{
			Name:        name,
			StorageType: StorageHash,
		},
	}
}

// OnHash sets the index storage type to HASH.
func (b *IndexBuilder) OnHash() *IndexBuilder {
	b.def.StorageType = StorageHash
	return b
}

// Prefix adds key prefixes to the index.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// Numeric adds a NUMERIC field to the index.
func (b *IndexBuilder) Numeric(name string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Name: name,
		Type: IndexFieldNumeric,
	})
	return b
}

// Tag adds a TAG field to the index.
func (b *IndexBuilder) Tag(name string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Name: name,
		Type: IndexFieldTag,
	})
	return b
}

// TagWithOpts adds a TAG field with custom separator and case sensitivity.
func (b *IndexBuilder) TagWithOpts(name, separator string, caseSensitive bool) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Name:             name,
		Type:             IndexFieldTag,
		TagSeparator:     separator,
		TagCaseSensitive: caseSensitive,
	})
	return b
}

// Text adds a TEXT field to the index.
func (b *IndexBuilder) Text(name string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Name: name,
		Type: IndexFieldText,
	})
	return b
}

// TextWeighted adds a TEXT field with a relevance weight.
func (b *IndexBuilder) TextWeighted(name string, weight float64) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Name:   name,
		Type:   IndexFieldText,
		Weight: weight,
	})
	return b
}

// Stored adds a field kept with the document but not indexed.
func (b *IndexBuilder) Stored(name string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Name: name,
		Type: IndexFieldStored,
	})
	return b
}

// Build validates and returns the index definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	return &b.def, nil
}

// MustBuild calls Build and panics on error.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

// String returns a debug representation resembling the FT.CREATE command.
// Stored-only fields are not part of an FT schema and are omitted.
func (idx *IndexDefinition) String() string {
	parts := []string{"FT.CREATE", idx.Name}
	if idx.StorageType != "" {
		parts = append(parts, "ON", string(idx.StorageType))
	}
	if len(idx.Prefixes) > 0 {
		parts = append(parts, "PREFIX")
		parts = append(parts, idx.Prefixes...)
	}
	parts = append(parts, "STOPWORDS", "0", "SCHEMA")
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Type == IndexFieldStored {
			continue
		}
		parts = append(parts, f.Name)
		if f.Alias != "" {
			parts = append(parts, "AS", f.Alias)
		}
		switch f.Type {
		case IndexFieldTag:
			parts = append(parts, "TAG")
			if f.TagSeparator != "" {
				parts = append(parts, "SEPARATOR", f.TagSeparator)
			}
			if f.TagCaseSensitive {
				parts = append(parts, "CASESENSITIVE")
			}
		case IndexFieldNumeric:
			parts = append(parts, "NUMERIC")
		case IndexFieldText:
			parts = append(parts, "TEXT")
			if f.Weight > 0 {
				parts = append(parts, "WEIGHT", strconv.FormatFloat(f.Weight, 'f', -1, 64))
			}
		}
	}
	return strings.Join(parts, " ")
}
