package service

import (
	"context"
	"fmt"
	"log/slog"

	domainerrors "github.com/staybook/staybook-server/internal/errors"
	"github.com/staybook/staybook-server/internal/search"
	"github.com/staybook/staybook-server/internal/store"
)

// SearchService answers place searches and keeps the index consistent with
// the store across restarts.
type SearchService struct {
	index  *search.SearchIndex
	store  store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, st store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  st,
		logger: logger,
	}
}

// Search runs a full-text and filtered place search.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	if params.MinPrice < 0 || params.MaxPrice < 0 || params.Guests < 0 {
		return nil, domainerrors.Validation("price and guest filters cannot be negative")
	}
	if params.MaxPrice > 0 && params.MinPrice > params.MaxPrice {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"minPrice": "must not exceed maxPrice",
		})
	}

	res, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, domainerrors.Upstream(err, "search places")
	}
	return res, nil
}

// DocumentCount returns the number of indexed places.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// ReindexAll rebuilds the index from every stored place.
func (s *SearchService) ReindexAll(ctx context.Context) error {
	places, err := s.store.ListPlaces(ctx)
	if err != nil {
		return fmt.Errorf("list places: %w", err)
	}
	if err := s.index.Rebuild(places); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}
	return nil
}

// EnsureIndexed rebuilds the index when it holds fewer documents than the
// store has places, e.g. after a fresh index or a mapping version change.
func (s *SearchService) EnsureIndexed(ctx context.Context) error {
	count, err := s.index.DocumentCount()
	if err != nil {
		return fmt.Errorf("count documents: %w", err)
	}
	places, err := s.store.ListPlaces(ctx)
	if err != nil {
		return fmt.Errorf("list places: %w", err)
	}
	if count >= uint64(len(places)) {
		return nil
	}
	if s.logger != nil {
		s.logger.Info("search index behind store, rebuilding", "indexed", count, "places", len(places))
	}
	return s.index.Rebuild(places)
}
