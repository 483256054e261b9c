package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/staybook/staybook-server/internal/errors"
	"github.com/staybook/staybook-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchPlaces",
		Method:      http.MethodGet,
		Path:        "/places/search",
		Summary:     "Search places",
		Description: "Full-text search over titles, addresses and descriptions with perk, price and capacity filters",
		Tags:        []string{"Places"},
	}, s.handleSearchPlaces)
}

// SearchPlacesInput contains search query parameters.
type SearchPlacesInput struct {
	Query    string   `query:"q" doc:"Search text; empty lists newest first"`
	Perks    []string `query:"perk" doc:"Required perks, all must match"`
	MinPrice float64  `query:"minPrice" minimum:"0" doc:"Lowest nightly price"`
	MaxPrice float64  `query:"maxPrice" minimum:"0" doc:"Highest nightly price, 0 for no limit"`
	Guests   int      `query:"guests" minimum:"0" doc:"Party size the place must hold"`
	Limit    int      `query:"limit" minimum:"0" maximum:"100" doc:"Results per page (default 20)"`
	Offset   int      `query:"offset" minimum:"0" doc:"Results to skip"`
}

// SearchPlacesOutput wraps the search result for Huma.
type SearchPlacesOutput struct {
	Body *search.SearchResult
}

func (s *Server) handleSearchPlaces(ctx context.Context, input *SearchPlacesInput) (*SearchPlacesOutput, error) {
	if s.services.Search == nil {
		return nil, s.fail(domainerrors.Internal("search is not configured"))
	}

	res, err := s.services.Search.Search(ctx, search.SearchParams{
		Query:    input.Query,
		Perks:    input.Perks,
		MinPrice: input.MinPrice,
		MaxPrice: input.MaxPrice,
		Guests:   input.Guests,
		Limit:    input.Limit,
		Offset:   input.Offset,
	})
	if err != nil {
		return nil, s.fail(err)
	}

	return &SearchPlacesOutput{Body: res}, nil
}
