package sqlite

import (
	"context"
	"fmt"

	"github.com/staybook/staybook-server/internal/domain"
	"github.com/staybook/staybook-server/internal/id"
)

// bookingColumns is the ordered list of columns selected in booking queries.
// Must match the scan order in scanBooking.
const bookingColumns = `id, place, user_id, check_in, check_out, guests, name, phone, price, created_at`

func scanBooking(scanner interface{ Scan(dest ...any) error }) (*domain.Booking, error) {
	var (
		b                            domain.Booking
		checkIn, checkOut, createdAt string
	)

	err := scanner.Scan(
		&b.ID,
		&b.Place,
		&b.User,
		&checkIn,
		&checkOut,
		&b.NumberOfGuests,
		&b.Name,
		&b.Phone,
		&b.Price,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if b.CheckIn, err = parseTime(checkIn); err != nil {
		return nil, fmt.Errorf("parse check_in: %w", err)
	}
	if b.CheckOut, err = parseTime(checkOut); err != nil {
		return nil, fmt.Errorf("parse check_out: %w", err)
	}
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &b, nil
}

// CreateBooking inserts a new booking.
func (s *Store) CreateBooking(ctx context.Context, booking *domain.Booking) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bookings (`+bookingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		booking.ID.String(), booking.Place.String(), booking.User.String(),
		formatTime(booking.CheckIn), formatTime(booking.CheckOut),
		booking.NumberOfGuests, booking.Name, booking.Phone, booking.Price,
		formatTime(booking.CreatedAt),
	)
	return mapWriteError(err, nil)
}

// ListBookingsByUser returns the bookings made by userID, oldest first.
func (s *Store) ListBookingsByUser(ctx context.Context, userID id.ID) ([]*domain.Booking, error) {
	return s.queryBookings(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? ORDER BY created_at, id`, userID.String())
}

// ListBookingsByPlace returns the bookings for placeID, oldest first.
func (s *Store) ListBookingsByPlace(ctx context.Context, placeID id.ID) ([]*domain.Booking, error) {
	return s.queryBookings(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE place = ? ORDER BY created_at, id`, placeID.String())
}

func (s *Store) queryBookings(ctx context.Context, query string, args ...any) ([]*domain.Booking, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapWriteError(err, nil)
	}
	defer rows.Close()

	bookings := []*domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
