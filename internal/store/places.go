package store

import (
	"context"
	"errors"
	"time"

	"github.com/staybook/staybook-server/internal/domain"
	"github.com/staybook/staybook-server/internal/id"
)

// CreatePlace stores a new place.
func (s *Badger) CreatePlace(ctx context.Context, place *domain.Place) error {
	if place.ID.IsZero() {
		return errors.New("place id is required")
	}
	return s.Places.Create(ctx, place.ID.String(), place)
}

// GetPlace retrieves a place by id.
func (s *Badger) GetPlace(ctx context.Context, placeID id.ID) (*domain.Place, error) {
	place, err := s.Places.Get(ctx, placeID.String())
	if err != nil {
		return nil, err
	}
	place.Normalize()
	return place, nil
}

// UpdatePlace replaces a stored place. Returns ErrPlaceNotFound if it does
// not exist.
func (s *Badger) UpdatePlace(ctx context.Context, place *domain.Place) error {
	return s.Places.Update(ctx, place.ID.String(), place)
}

// ListPlaces returns every place.
func (s *Badger) ListPlaces(ctx context.Context) ([]*domain.Place, error) {
	places, err := s.Places.Collect(ctx)
	if err != nil {
		return nil, err
	}
	return finishPlaces(places), nil
}

// ListPlacesByOwner returns the places owned by owner.
func (s *Badger) ListPlacesByOwner(ctx context.Context, owner id.ID) ([]*domain.Place, error) {
	places, err := s.Places.ListByIndex(ctx, "owner", owner.String())
	if err != nil {
		return nil, err
	}
	return finishPlaces(places), nil
}

func finishPlaces(places []*domain.Place) []*domain.Place {
	if places == nil {
		return []*domain.Place{}
	}
	for _, p := range places {
		p.Normalize()
	}
	sortByCreated(places,
		func(p *domain.Place) time.Time { return p.CreatedAt },
		func(p *domain.Place) string { return p.ID.String() })
	return places
}
