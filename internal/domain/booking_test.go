package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(d int) time.Time {
	return time.Date(2026, time.July, d, 0, 0, 0, 0, time.UTC)
}

func TestBooking_Nights(t *testing.T) {
	tests := []struct {
		name     string
		in, out  time.Time
		expected int
	}{
		{"single night", day(1), day(2), 1},
		{"week", day(1), day(8), 7},
		{"partial day rounds up", day(1), day(2).Add(3 * time.Hour), 2},
		{"same instant", day(1), day(1), 0},
		{"reversed", day(3), day(1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Booking{CheckIn: tt.in, CheckOut: tt.out}
			assert.Equal(t, tt.expected, b.Nights())
		})
	}
}

func TestBooking_Overlaps(t *testing.T) {
	base := &Booking{Place: "plc-1", CheckIn: day(10), CheckOut: day(15)}

	tests := []struct {
		name     string
		other    *Booking
		expected bool
	}{
		{"identical", &Booking{Place: "plc-1", CheckIn: day(10), CheckOut: day(15)}, true},
		{"inside", &Booking{Place: "plc-1", CheckIn: day(11), CheckOut: day(12)}, true},
		{"straddles start", &Booking{Place: "plc-1", CheckIn: day(8), CheckOut: day(11)}, true},
		{"back to back after", &Booking{Place: "plc-1", CheckIn: day(15), CheckOut: day(17)}, false},
		{"back to back before", &Booking{Place: "plc-1", CheckIn: day(5), CheckOut: day(10)}, false},
		{"other place", &Booking{Place: "plc-2", CheckIn: day(10), CheckOut: day(15)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, base.Overlaps(tt.other))
			assert.Equal(t, tt.expected, tt.other.Overlaps(base))
		})
	}
}

func TestBooking_WithPlace(t *testing.T) {
	b := &Booking{ID: "bkg-1", Place: "plc-1", User: "usr-1", CheckIn: day(1), CheckOut: day(3), NumberOfGuests: 2, Name: "Ada", Phone: "555", Price: 200}
	p := &Place{ID: "plc-1", Title: "Lake House"}

	got := b.WithPlace(p)

	assert.Equal(t, b.ID, got.ID)
	assert.Same(t, p, got.Place)
	assert.Equal(t, b.User, got.User)
	assert.Equal(t, 2, got.NumberOfGuests)
	assert.Equal(t, 200.0, got.Price)
}
