package domain

import (
	"math"
	"time"

	"github.com/staybook/staybook-server/internal/id"
)

// Booking is a reservation of a place by a user. Bookings are immutable.
type Booking struct {
	ID             id.ID     `json:"_id" bson:"_id"`
	Place          id.ID     `json:"place" bson:"place"`
	User           id.ID     `json:"user" bson:"user"`
	CheckIn        time.Time `json:"checkIn" bson:"checkIn"`
	CheckOut       time.Time `json:"checkOut" bson:"checkOut"`
	NumberOfGuests int       `json:"numberofGuests" bson:"numberofGuests"`
	Name           string    `json:"name" bson:"name"`
	Phone          string    `json:"phone" bson:"phone"`
	Price          float64   `json:"price" bson:"price"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
}

// Nights returns the number of nights covered, counting a partial day as one.
func (b *Booking) Nights() int {
	d := b.CheckOut.Sub(b.CheckIn)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

// Overlaps reports whether both bookings hold the same place over
// intersecting [CheckIn, CheckOut) ranges.
func (b *Booking) Overlaps(other *Booking) bool {
	if b.Place != other.Place {
		return false
	}
	return b.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(b.CheckOut)
}

// BookingWithPlace is a booking whose place reference is resolved.
// Place is nil when the referenced place no longer resolves.
type BookingWithPlace struct {
	ID             id.ID     `json:"_id"`
	Place          *Place    `json:"place"`
	User           id.ID     `json:"user"`
	CheckIn        time.Time `json:"checkIn"`
	CheckOut       time.Time `json:"checkOut"`
	NumberOfGuests int       `json:"numberofGuests"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	Price          float64   `json:"price"`
	CreatedAt      time.Time `json:"createdAt"`
}

// WithPlace resolves the booking's place reference.
func (b *Booking) WithPlace(p *Place) BookingWithPlace {
	return BookingWithPlace{
		ID:             b.ID,
		Place:          p,
		User:           b.User,
		CheckIn:        b.CheckIn,
		CheckOut:       b.CheckOut,
		NumberOfGuests: b.NumberOfGuests,
		Name:           b.Name,
		Phone:          b.Phone,
		Price:          b.Price,
		CreatedAt:      b.CreatedAt,
	}
}
