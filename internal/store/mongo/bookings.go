package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/staybook/staybook-server/internal/domain"
	"github.com/staybook/staybook-server/internal/id"
)

// CreateBooking inserts a new booking.
func (s *Store) CreateBooking(ctx context.Context, booking *domain.Booking) error {
	_, err := s.bookings.InsertOne(ctx, booking)
	return mapError(err, nil, nil)
}

// ListBookingsByUser returns the bookings made by userID, oldest first.
func (s *Store) ListBookingsByUser(ctx context.Context, userID id.ID) ([]*domain.Booking, error) {
	return s.findBookings(ctx, bson.M{"user": userID.String()})
}

// ListBookingsByPlace returns the bookings for placeID, oldest first.
func (s *Store) ListBookingsByPlace(ctx context.Context, placeID id.ID) ([]*domain.Booking, error) {
	return s.findBookings(ctx, bson.M{"place": placeID.String()})
}

func (s *Store) findBookings(ctx context.Context, filter bson.M) ([]*domain.Booking, error) {
	cur, err := s.bookings.Find(ctx, filter, byCreated())
	if err != nil {
		return nil, mapError(err, nil, nil)
	}

	bookings := []*domain.Booking{}
	if err := cur.All(ctx, &bookings); err != nil {
		return nil, mapError(err, nil, nil)
	}
	return bookings, nil
}
