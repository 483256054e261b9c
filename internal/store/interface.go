// Package store defines the persistence interface for the StayBook server
// and its embedded Badger implementation.
package store

import (
	"context"

	"github.com/staybook/staybook-server/internal/domain"
	"github.com/staybook/staybook-server/internal/id"
)

// Store defines every persistence operation. List operations return
// documents ordered by creation time, oldest first.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, userID id.ID) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// Places
	CreatePlace(ctx context.Context, place *domain.Place) error
	GetPlace(ctx context.Context, placeID id.ID) (*domain.Place, error)
	UpdatePlace(ctx context.Context, place *domain.Place) error
	ListPlaces(ctx context.Context) ([]*domain.Place, error)
	ListPlacesByOwner(ctx context.Context, owner id.ID) ([]*domain.Place, error)

	// Bookings
	CreateBooking(ctx context.Context, booking *domain.Booking) error
	ListBookingsByUser(ctx context.Context, userID id.ID) ([]*domain.Booking, error)
	ListBookingsByPlace(ctx context.Context, placeID id.ID) ([]*domain.Booking, error)
}

// Compile-time check that the Badger store satisfies Store.
var _ Store = (*Badger)(nil)
