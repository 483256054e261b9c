package store

import (
	"context"
	"errors"
	"time"

	"github.com/staybook/staybook-server/internal/domain"
	"github.com/staybook/staybook-server/internal/id"
)

// CreateBooking stores a new booking.
func (s *Badger) CreateBooking(ctx context.Context, booking *domain.Booking) error {
	if booking.ID.IsZero() {
		return errors.New("booking id is required")
	}
	return s.Bookings.Create(ctx, booking.ID.String(), booking)
}

// ListBookingsByUser returns the bookings made by userID.
func (s *Badger) ListBookingsByUser(ctx context.Context, userID id.ID) ([]*domain.Booking, error) {
	bookings, err := s.Bookings.ListByIndex(ctx, "user", userID.String())
	if err != nil {
		return nil, err
	}
	return finishBookings(bookings), nil
}

// ListBookingsByPlace returns the bookings for placeID.
func (s *Badger) ListBookingsByPlace(ctx context.Context, placeID id.ID) ([]*domain.Booking, error) {
	bookings, err := s.Bookings.ListByIndex(ctx, "place", placeID.String())
	if err != nil {
		return nil, err
	}
	return finishBookings(bookings), nil
}

func finishBookings(bookings []*domain.Booking) []*domain.Booking {
	if bookings == nil {
		return []*domain.Booking{}
	}
	sortByCreated(bookings,
		func(b *domain.Booking) time.Time { return b.CreatedAt },
		func(b *domain.Booking) string { return b.ID.String() })
	return bookings
}
