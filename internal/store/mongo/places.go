package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/staybook/staybook-server/internal/domain"
	"github.com/staybook/staybook-server/internal/id"
	"github.com/staybook/staybook-server/internal/store"
)

// CreatePlace inserts a new place.
func (s *Store) CreatePlace(ctx context.Context, place *domain.Place) error {
	place.Normalize()
	_, err := s.places.InsertOne(ctx, place)
	return mapError(err, nil, nil)
}

// GetPlace retrieves a place by id.
func (s *Store) GetPlace(ctx context.Context, placeID id.ID) (*domain.Place, error) {
	var p domain.Place
	if err := s.places.FindOne(ctx, bson.M{"_id": placeID.String()}).Decode(&p); err != nil {
		return nil, mapError(err, store.ErrPlaceNotFound, nil)
	}
	p.Normalize()
	return &p, nil
}

// UpdatePlace replaces the stored document.
// Returns store.ErrPlaceNotFound if no document matched.
func (s *Store) UpdatePlace(ctx context.Context, place *domain.Place) error {
	place.Normalize()
	res, err := s.places.ReplaceOne(ctx, bson.M{"_id": place.ID.String()}, place)
	if err != nil {
		return mapError(err, nil, nil)
	}
	if res.MatchedCount == 0 {
		return store.ErrPlaceNotFound
	}
	return nil
}

// ListPlaces returns every place, oldest first.
func (s *Store) ListPlaces(ctx context.Context) ([]*domain.Place, error) {
	return s.findPlaces(ctx, bson.M{})
}

// ListPlacesByOwner returns the places owned by owner, oldest first.
func (s *Store) ListPlacesByOwner(ctx context.Context, owner id.ID) ([]*domain.Place, error) {
	return s.findPlaces(ctx, bson.M{"owner": owner.String()})
}

func (s *Store) findPlaces(ctx context.Context, filter bson.M) ([]*domain.Place, error) {
	cur, err := s.places.Find(ctx, filter, byCreated())
	if err != nil {
		return nil, mapError(err, nil, nil)
	}

	places := []*domain.Place{}
	if err := cur.All(ctx, &places); err != nil {
		return nil, mapError(err, nil, nil)
	}
	for _, p := range places {
		p.Normalize()
	}
	return places, nil
}
