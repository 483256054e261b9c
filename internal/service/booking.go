package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/staybook/staybook-server/internal/domain"
	domainerrors "github.com/staybook/staybook-server/internal/errors"
	"github.com/staybook/staybook-server/internal/events"
	"github.com/staybook/staybook-server/internal/id"
	"github.com/staybook/staybook-server/internal/store"
	"github.com/staybook/staybook-server/internal/validation"
)

// BookingInput is a reservation request.
type BookingInput struct {
	Place          string    `json:"place" validate:"required,max=64"`
	CheckIn        time.Time `json:"checkIn" validate:"required"`
	CheckOut       time.Time `json:"checkOut" validate:"required"`
	NumberOfGuests int       `json:"numberofGuests" validate:"min=1,max=10000"`
	Name           string    `json:"name" validate:"required,max=200"`
	Phone          string    `json:"phone" validate:"required,max=50"`
	// Price of zero means nights times the nightly price of the place.
	Price float64 `json:"price" validate:"min=0"`
}

// BookingOptions tunes booking rules.
type BookingOptions struct {
	// RejectOverlap refuses bookings whose dates intersect an existing
	// booking of the same place.
	RejectOverlap bool
}

// BookingService creates and lists reservations.
type BookingService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
	opts      BookingOptions
	publisher events.Publisher
}

// NewBookingService creates a booking service.
func NewBookingService(st store.Store, v *validation.Validator, opts BookingOptions, logger *slog.Logger) *BookingService {
	return &BookingService{
		store:     st,
		validator: v,
		logger:    logger,
		opts:      opts,
		publisher: events.Noop{},
	}
}

// SetPublisher attaches a domain event publisher.
func (s *BookingService) SetPublisher(p events.Publisher) {
	if p == nil {
		p = events.Noop{}
	}
	s.publisher = p
}

// CreateBooking reserves a place for user.
func (s *BookingService) CreateBooking(ctx context.Context, user id.ID, in BookingInput) (*domain.Booking, error) {
	if user.IsZero() {
		return nil, domainerrors.ErrMissingToken
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	if !in.CheckOut.After(in.CheckIn) {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"checkOut": "must be after checkIn",
		})
	}

	placeID, err := id.Parse(in.Place)
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

	if place.MaxGuests > 0 && in.NumberOfGuests > place.MaxGuests {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"numberofGuests": fmt.Sprintf("must not exceed %d", place.MaxGuests),
		})
	}

	bookingID, err := id.Generate(id.PrefixBooking)
	if err != nil {
		return nil, fmt.Errorf("generate booking ID: %w", err)
	}

	booking := &domain.Booking{
		ID:             bookingID,
		Place:          place.ID,
		User:           user,
		CheckIn:        in.CheckIn.UTC(),
		CheckOut:       in.CheckOut.UTC(),
		NumberOfGuests: in.NumberOfGuests,
		Name:           in.Name,
		Phone:          in.Phone,
		Price:          in.Price,
		CreatedAt:      time.Now().UTC(),
	}
	if booking.Price == 0 {
		booking.Price = float64(booking.Nights()) * place.Price
	}

	if s.opts.RejectOverlap {
		if err := s.checkOverlap(ctx, booking); err != nil {
			return nil, err
		}
	}

	if err := s.store.CreateBooking(ctx, booking); err != nil {
		return nil, domainerrors.Upstream(err, "create booking")
	}

	evt := events.New(events.BookingCreated, user, booking.ID, booking)
	if err := s.publisher.Publish(ctx, evt); err != nil && s.logger != nil {
		s.logger.Warn("failed to publish event", "type", events.BookingCreated, "booking_id", booking.ID, "error", err)
	}

	if s.logger != nil {
		s.logger.Info("booking created", "booking_id", booking.ID, "place_id", place.ID, "user", user)
	}

	return booking, nil
}

func (s *BookingService) checkOverlap(ctx context.Context, booking *domain.Booking) error {
	existing, err := s.store.ListBookingsByPlace(ctx, booking.Place)
	if err != nil {
		return domainerrors.Upstream(err, "list place bookings")
	}
	for _, other := range existing {
		if booking.Overlaps(other) {
			return domainerrors.Conflict("Place is already booked for these dates")
		}
	}
	return nil
}

// ListBookings returns the bookings of user with each place resolved. A
// booking whose place no longer resolves carries a nil place.
func (s *BookingService) ListBookings(ctx context.Context, user id.ID) ([]domain.BookingWithPlace, error) {
	if user.IsZero() {
		return nil, domainerrors.ErrMissingToken
	}

	bookings, err := s.store.ListBookingsByUser(ctx, user)
	if err != nil {
		return nil, domainerrors.Upstream(err, "list bookings")
	}

	places := make(map[id.ID]*domain.Place)
	out := make([]domain.BookingWithPlace, 0, len(bookings))
	for _, b := range bookings {
		place, seen := places[b.Place]
		if !seen {
			place, err = s.store.GetPlace(ctx, b.Place)
			switch {
			case errors.Is(err, store.ErrPlaceNotFound):
				place = nil
			case err != nil:
				return nil, domainerrors.Upstream(err, "get place")
			}
			places[b.Place] = place
		}
		out = append(out, b.WithPlace(place))
	}
	return out, nil
}
