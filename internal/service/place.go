package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/staybook/staybook-server/internal/cache"
	"github.com/staybook/staybook-server/internal/domain"
	domainerrors "github.com/staybook/staybook-server/internal/errors"
	"github.com/staybook/staybook-server/internal/events"
	"github.com/staybook/staybook-server/internal/id"
	"github.com/staybook/staybook-server/internal/store"
	"github.com/staybook/staybook-server/internal/validation"
)

// PlaceIndexer keeps the search index in step with the store.
type PlaceIndexer interface {
	IndexPlace(p *domain.Place) error
}

// PlaceholderSource computes BlurHash placeholders for photo paths.
type PlaceholderSource interface {
	Placeholders(photos []string) map[string]string
}

// PlaceInput holds every owner-editable field of a place.
type PlaceInput struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Address     string   `json:"address" validate:"max=500"`
	Photos      []string `json:"addedPhotos" validate:"max=100,dive,max=2048"`
	Description string   `json:"description" validate:"max=10000"`
	Perks       []string `json:"perks" validate:"max=50,dive,max=100"`
	ExtraInfo   string   `json:"extraInfo" validate:"max=10000"`
	CheckIn     string   `json:"checkIn" validate:"max=50"`
	CheckOut    string   `json:"checkOut" validate:"max=50"`
	MaxGuests   int      `json:"maxGuests" validate:"min=0,max=10000"`
	Price       float64  `json:"price" validate:"min=0"`
}

func (in PlaceInput) details() domain.PlaceDetails {
	return domain.PlaceDetails{
		Title:       in.Title,
		Address:     in.Address,
		Photos:      in.Photos,
		Description: in.Description,
		Perks:       in.Perks,
		ExtraInfo:   in.ExtraInfo,
		CheckIn:     in.CheckIn,
		CheckOut:    in.CheckOut,
		MaxGuests:   in.MaxGuests,
		Price:       in.Price,
	}
}

// PlaceService manages listings.
type PlaceService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger

	cache        *cache.Cache[*domain.Place]
	index        PlaceIndexer
	placeholders PlaceholderSource
	publisher    events.Publisher
}

// NewPlaceService creates a place service. Cache, search index, placeholder
// source and publisher are optional and attached with the Set methods.
func NewPlaceService(st store.Store, v *validation.Validator, logger *slog.Logger) *PlaceService {
	return &PlaceService{
		store:     st,
		validator: v,
		logger:    logger,
		publisher: events.Noop{},
	}
}

// SetCache attaches a read cache for GetPlace.
func (s *PlaceService) SetCache(c *cache.Cache[*domain.Place]) {
	s.cache = c
}

// SetSearchIndex attaches the search index.
func (s *PlaceService) SetSearchIndex(index PlaceIndexer) {
	s.index = index
}

// SetPlaceholderSource attaches upload storage for photo placeholders.
func (s *PlaceService) SetPlaceholderSource(src PlaceholderSource) {
	s.placeholders = src
}

// SetPublisher attaches a domain event publisher.
func (s *PlaceService) SetPublisher(p events.Publisher) {
	if p == nil {
		p = events.Noop{}
	}
	s.publisher = p
}

// CreatePlace creates a place owned by owner.
func (s *PlaceService) CreatePlace(ctx context.Context, owner id.ID, in PlaceInput) (*domain.Place, error) {
	if owner.IsZero() {
		return nil, domainerrors.ErrMissingToken
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	placeID, err := id.Generate(id.PrefixPlace)
	if err != nil {
		return nil, fmt.Errorf("generate place ID: %w", err)
	}

	place := domain.NewPlace(placeID, owner, in.details())
	s.attachPlaceholders(place)

	if err := s.store.CreatePlace(ctx, place); err != nil {
		return nil, domainerrors.Upstream(err, "create place")
	}

	s.afterWrite(ctx, events.PlaceCreated, owner, place)

	if s.logger != nil {
		s.logger.Info("place created", "place_id", place.ID, "owner", owner)
	}

	return place, nil
}

// GetPlace returns a place by id. Unknown or malformed ids are NOT_FOUND.
func (s *PlaceService) GetPlace(ctx context.Context, rawID string) (*domain.Place, error) {
	placeID, err := id.Parse(rawID)
	if err != nil {
		return nil, domainerrors.NotFound("Place not found")
	}

	if s.cache != nil {
		if place, ok := s.cache.Get(placeID.String()); ok {
			return place, nil
		}
	}

	place, err := s.store.GetPlace(ctx, placeID)
	if err != nil {
		if errors.Is(err, store.ErrPlaceNotFound) {
			return nil, domainerrors.NotFound("Place not found")
		}
		return nil, domainerrors.Upstream(err, "get place")
	}

	if s.cache != nil {
		s.cache.Fill(placeID.String(), place)
	}

	return place, nil
}

// UpdatePlace replaces every editable field of the place with in. Only the
// owner may update; anyone else gets FORBIDDEN. Fields absent from in are
// cleared.
func (s *PlaceService) UpdatePlace(ctx context.Context, caller id.ID, rawID string, in PlaceInput) (*domain.Place, error) {
	if caller.IsZero() {
		return nil, domainerrors.ErrMissingToken
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	placeID, err := id.Parse(rawID)
	if err != nil {
		return nil, domainerrors.NotFound("Place not found")
	}

	place, err := s.store.GetPlace(ctx, placeID)
	if err != nil {
		if errors.Is(err, store.ErrPlaceNotFound) {
			return nil, domainerrors.NotFound("Place not found")
		}
		return nil, domainerrors.Upstream(err, "get place")
	}

	if !place.IsOwnedBy(caller) {
		if s.logger != nil {
			s.logger.Warn("place update rejected: not owner", "place_id", placeID, "caller", caller)
		}
		return nil, domainerrors.Forbidden("Unauthorized")
	}

	place.Apply(in.details())
	place.Touch()
	s.attachPlaceholders(place)

	if err := s.store.UpdatePlace(ctx, place); err != nil {
		if errors.Is(err, store.ErrPlaceNotFound) {
			return nil, domainerrors.NotFound("Place not found")
		}
		return nil, domainerrors.Upstream(err, "update place")
	}

	if s.cache != nil {
		s.cache.Set(placeID.String(), place)
	}
	s.afterWrite(ctx, events.PlaceUpdated, caller, place)

	return place, nil
}

// ListPlaces returns every place, oldest first.
func (s *PlaceService) ListPlaces(ctx context.Context) ([]*domain.Place, error) {
	places, err := s.store.ListPlaces(ctx)
	if err != nil {
		return nil, domainerrors.Upstream(err, "list places")
	}
	return places, nil
}

// ListPlacesByOwner returns the places owned by owner, oldest first.
func (s *PlaceService) ListPlacesByOwner(ctx context.Context, owner id.ID) ([]*domain.Place, error) {
	if owner.IsZero() {
		return nil, domainerrors.ErrMissingToken
	}
	places, err := s.store.ListPlacesByOwner(ctx, owner)
	if err != nil {
		return nil, domainerrors.Upstream(err, "list user places")
	}
	return places, nil
}

func (s *PlaceService) attachPlaceholders(place *domain.Place) {
	if s.placeholders == nil {
		return
	}
	place.PhotoPlaceholders = s.placeholders.Placeholders(place.Photos)
}

// afterWrite updates the search index and publishes an event. Failures are
// logged; the write itself already succeeded.
func (s *PlaceService) afterWrite(ctx context.Context, eventType string, actor id.ID, place *domain.Place) {
	if s.index != nil {
		if err := s.index.IndexPlace(place); err != nil && s.logger != nil {
			s.logger.Error("failed to index place", "place_id", place.ID, "error", err)
		}
	}

	evt := events.New(eventType, actor, place.ID, place)
	if err := s.publisher.Publish(ctx, evt); err != nil && s.logger != nil {
		s.logger.Warn("failed to publish event", "type", eventType, "place_id", place.ID, "error", err)
	}
}
