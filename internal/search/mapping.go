package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the mapping for place documents: English text
// for prose, simple analysis for addresses, keywords for ids and perks,
// numerics for filters.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = en.AnalyzerName
	titleFieldMapping.Store = true
	titleFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	// Street names should not be stemmed.
	addressFieldMapping := bleve.NewTextFieldMapping()
	addressFieldMapping.Analyzer = simple.Name
	addressFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("address", addressFieldMapping)

	descFieldMapping := bleve.NewTextFieldMapping()
	descFieldMapping.Analyzer = en.AnalyzerName
	descFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("description", descFieldMapping)

	extraFieldMapping := bleve.NewTextFieldMapping()
	extraFieldMapping.Analyzer = en.AnalyzerName
	extraFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("extra_info", extraFieldMapping)

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	ownerFieldMapping := bleve.NewTextFieldMapping()
	ownerFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("owner", ownerFieldMapping)

	// Perks are already slugs ("free-parking"); keep them whole.
	perksFieldMapping := bleve.NewTextFieldMapping()
	perksFieldMapping.Analyzer = keyword.Name
	perksFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("perks", perksFieldMapping)

	priceFieldMapping := bleve.NewNumericFieldMapping()
	priceFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("price", priceFieldMapping)

	guestsFieldMapping := bleve.NewNumericFieldMapping()
	guestsFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("max_guests", guestsFieldMapping)

	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
