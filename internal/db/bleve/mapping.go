package bleve

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/kailas-cloud/figdex/internal/db"
)

const (
	// textAnalyzer splits on unicode word boundaries and lowercases.
	// No stop-word removal: every query token must be matchable.
	textAnalyzer = "figdex_text"
	// tagAnalyzer keeps the whole value as one lowercased term.
	tagAnalyzer = "figdex_tag"
)

// buildIndexMapping translates an index definition into a bleve mapping.
// Tag fields are single lowercased terms unless case-sensitive, text fields
// are tokenized, numeric fields are indexed as numbers, stored fields are
// kept for retrieval only. Every field is stored so hits carry the document.
func buildIndexMapping(def *db.IndexDefinition) (mapping.IndexMapping, error) {
	im := bleve.NewIndexMapping()

	if err := im.AddCustomAnalyzer(textAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name},
	}); err != nil {
		return nil, fmt.Errorf("register text analyzer: %w", err)
	}
	if err := im.AddCustomAnalyzer(tagAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     single.Name,
		"token_filters": []string{lowercase.Name},
	}); err != nil {
		return nil, fmt.Errorf("register tag analyzer: %w", err)
	}
	im.DefaultAnalyzer = textAnalyzer

	doc := bleve.NewDocumentMapping()
	doc.Dynamic = false

	for i := range def.Fields {
		f := &def.Fields[i]
		var fm *mapping.FieldMapping

		switch f.Type {
		case db.IndexFieldTag:
			fm = bleve.NewTextFieldMapping()
			fm.Analyzer = tagAnalyzer
			if f.TagCaseSensitive {
				fm.Analyzer = keyword.Name
			}
		case db.IndexFieldText:
			fm = bleve.NewTextFieldMapping()
			fm.Analyzer = textAnalyzer
		case db.IndexFieldNumeric:
			fm = bleve.NewNumericFieldMapping()
		case db.IndexFieldStored:
			fm = bleve.NewTextFieldMapping()
			fm.Index = false
			fm.IncludeInAll = false
		default:
			return nil, fmt.Errorf("unknown field type for %s", f.Name)
		}

		fm.Store = true
		doc.AddFieldMappingsAt(f.FieldName(), fm)
	}

	im.DefaultMapping = doc
	return im, nil
}
