package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/staybook/staybook-server/internal/id"
)

// Limits applied to SearchParams.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// SearchParams configures a place search. Zero values disable a filter.
type SearchParams struct {
	Query    string
	Perks    []string // every perk must be present
	MinPrice float64
	MaxPrice float64
	Guests   int // minimum capacity; places without a limit always match

	Limit  int
	Offset int
}

// SearchResult is the response body of a place search.
type SearchResult struct {
	Query string      `json:"query"`
	Total uint64      `json:"total"`
	Hits  []SearchHit `json:"hits"`
}

// SearchHit is a single matching place.
type SearchHit struct {
	ID      id.ID   `json:"_id"`
	Score   float64 `json:"score"`
	Title   string  `json:"title"`
	Address string  `json:"address"`
	Price   float64 `json:"price"`
}

// Search runs params against the index.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	params.Query = strings.TrimSpace(params.Query)
	switch {
	case params.Limit <= 0:
		params.Limit = DefaultLimit
	case params.Limit > MaxLimit:
		params.Limit = MaxLimit
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)
	if params.Query == "" {
		// No relevance to rank by; list oldest first like the store does.
		req.SortBy([]string{"created_at", "_id"})
	}
	req.Fields = []string{"title", "address", "price"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	out := &SearchResult{
		Query: params.Query,
		Total: res.Total,
		Hits:  make([]SearchHit, 0, len(res.Hits)),
	}
	for _, hit := range res.Hits {
		h := SearchHit{ID: id.ID(hit.ID), Score: hit.Score}
		if t, ok := hit.Fields["title"].(string); ok {
			h.Title = t
		}
		if a, ok := hit.Fields["address"].(string); ok {
			h.Address = a
		}
		if p, ok := hit.Fields["price"].(float64); ok {
			h.Price = p
		}
		out.Hits = append(out.Hits, h)
	}

	return out, nil
}

// buildSearchQuery ANDs the text query with every active filter.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if params.Query != "" {
		titleMatch := bleve.NewMatchQuery(params.Query)
		titleMatch.SetField("title")
		titleMatch.SetBoost(3.0)

		addressMatch := bleve.NewMatchQuery(params.Query)
		addressMatch.SetField("address")
		addressMatch.SetBoost(2.0)

		descMatch := bleve.NewMatchQuery(params.Query)
		descMatch.SetField("description")

		extraMatch := bleve.NewMatchQuery(params.Query)
		extraMatch.SetField("extra_info")
		extraMatch.SetBoost(0.5)

		// Typo tolerance on titles.
		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(params.Query))
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("title")
		fuzzy.SetBoost(0.8)

		textQueries := []query.Query{titleMatch, addressMatch, descMatch, extraMatch, fuzzy}

		if len(params.Query) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefix.SetField("title")
			prefix.SetBoost(0.5)
			textQueries = append(textQueries, prefix)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	for _, perk := range params.Perks {
		if perk == "" {
			continue
		}
		tq := bleve.NewTermQuery(perk)
		tq.SetField("perks")
		queries = append(queries, tq)
	}

	if params.MinPrice > 0 || params.MaxPrice > 0 {
		inclusive := true
		var lo, hi *float64
		if params.MinPrice > 0 {
			lo = &params.MinPrice
		}
		if params.MaxPrice > 0 {
			hi = &params.MaxPrice
		}
		rq := bleve.NewNumericRangeInclusiveQuery(lo, hi, &inclusive, &inclusive)
		rq.SetField("price")
		queries = append(queries, rq)
	}

	if params.Guests > 0 {
		inclusive := true
		guests := float64(params.Guests)
		zero := 0.0

		enough := bleve.NewNumericRangeInclusiveQuery(&guests, nil, &inclusive, nil)
		enough.SetField("max_guests")

		unlimited := bleve.NewNumericRangeInclusiveQuery(&zero, &zero, &inclusive, &inclusive)
		unlimited.SetField("max_guests")

		queries = append(queries, bleve.NewDisjunctionQuery(enough, unlimited))
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}
