// Package storetest runs the behavioral contract every store.Store backend
// must satisfy.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staybook/staybook-server/internal/domain"
	"github.com/staybook/staybook-server/internal/id"
	"github.com/staybook/staybook-server/internal/store"
)

// Factory returns a fresh, empty store. The factory owns cleanup.
type Factory func(t *testing.T) store.Store

// Run executes the contract suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"Ping", testPing},
		{"CreateAndGetUser", testCreateAndGetUser},
		{"DuplicateEmail", testDuplicateEmail},
		{"ConcurrentDuplicateEmail", testConcurrentDuplicateEmail},
		{"UserNotFound", testUserNotFound},
		{"CreateAndGetPlace", testCreateAndGetPlace},
		{"PlaceNotFound", testPlaceNotFound},
		{"UpdatePlace", testUpdatePlace},
		{"UpdateMissingPlace", testUpdateMissingPlace},
		{"ListPlaces", testListPlaces},
		{"ListPlacesByOwner", testListPlacesByOwner},
		{"Bookings", testBookings},
		{"EmptyLists", testEmptyLists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

// at returns a fixed instant offset by n minutes, truncated to
// millisecond precision so every backend round-trips it exactly.
func at(n int) time.Time {
	return time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Minute)
}

func newUser(t *testing.T, email string) *domain.User {
	t.Helper()
	return &domain.User{
		ID:           id.MustGenerate(id.PrefixUser),
		Name:         "Test User",
		Email:        email,
		PasswordHash: "$2a$08$abcdefghijklmnopqrstuuJ0yQ6GZ1l1yPVa1R2v8WJb3pV4nQ1xK",
		CreatedAt:    at(0),
	}
}

func newPlace(owner id.ID, title string, created time.Time) *domain.Place {
	p := domain.NewPlace(id.MustGenerate(id.PrefixPlace), owner, domain.PlaceDetails{
		Title:     title,
		Address:   "1 Harbour Road",
		Photos:    []string{"/a.jpg", "/b.png"},
		Perks:     []string{"wifi", "parking"},
		CheckIn:   "14:00",
		CheckOut:  "11:00",
		MaxGuests: 4,
		Price:     125.5,
	})
	p.CreatedAt = created
	p.UpdatedAt = created
	return p
}

func newBooking(placeID, userID id.ID, created time.Time) *domain.Booking {
	return &domain.Booking{
		ID:             id.MustGenerate(id.PrefixBooking),
		Place:          placeID,
		User:           userID,
		CheckIn:        at(60 * 24),
		CheckOut:       at(60 * 24 * 3),
		NumberOfGuests: 2,
		Name:           "Ada",
		Phone:          "+1 555 0100",
		Price:          251,
		CreatedAt:      created,
	}
}

func testPing(t *testing.T, s store.Store) {
	assert.NoError(t, s.Ping(context.Background()))
}

func testCreateAndGetUser(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := newUser(t, "  Ada@Example.com ")
	require.NoError(t, s.CreateUser(ctx, u))

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, u.PasswordHash, got.PasswordHash)
	assert.True(t, u.CreatedAt.Equal(got.CreatedAt))

	byEmail, err := s.GetUserByEmail(ctx, "ADA@example.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
}

func testDuplicateEmail(t *testing.T, s store.Store) {
	ctx := context.Background()
	first := newUser(t, "dup@example.com")
	first.Name = "First"
	require.NoError(t, s.CreateUser(ctx, first))

	second := newUser(t, "DUP@example.com")
	second.Name = "Second"
	err := s.CreateUser(ctx, second)
	assert.ErrorIs(t, err, store.ErrEmailExists)
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	got, err := s.GetUserByEmail(ctx, "dup@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID, "first user must be untouched")
	assert.Equal(t, "First", got.Name)

	_, err = s.GetUser(ctx, second.ID)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func testConcurrentDuplicateEmail(t *testing.T, s store.Store) {
	ctx := context.Background()
	const workers = 8

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.CreateUser(ctx, newUser(t, "race@example.com"))
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, store.ErrEmailExists)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
}

func testUserNotFound(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.GetUser(ctx, "usr-missing")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func testCreateAndGetPlace(t *testing.T, s store.Store) {
	ctx := context.Background()
	p := newPlace("usr-owner", "Lake House", at(1))
	p.PhotoPlaceholders = map[string]string{"/a.jpg": "LEHV6nWB2yk8pyo0adR*.7kCMdnj"}
	require.NoError(t, s.CreatePlace(ctx, p))

	got, err := s.GetPlace(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, id.ID("usr-owner"), got.Owner)
	assert.Equal(t, "Lake House", got.Title)
	assert.Equal(t, []string{"/a.jpg", "/b.png"}, got.Photos)
	assert.Equal(t, []string{"wifi", "parking"}, got.Perks)
	assert.Equal(t, "14:00", got.CheckIn)
	assert.Equal(t, 4, got.MaxGuests)
	assert.InDelta(t, 125.5, got.Price, 0.0001)
	assert.Equal(t, p.PhotoPlaceholders, got.PhotoPlaceholders)
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))
}

func testPlaceNotFound(t *testing.T, s store.Store) {
	_, err := s.GetPlace(context.Background(), "plc-missing")
	assert.ErrorIs(t, err, store.ErrPlaceNotFound)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testUpdatePlace(t *testing.T, s store.Store) {
	ctx := context.Background()
	p := newPlace("usr-owner", "Before", at(1))
	require.NoError(t, s.CreatePlace(ctx, p))

	p.Apply(domain.PlaceDetails{Title: "After", Perks: []string{"tv"}})
	p.UpdatedAt = at(5)
	require.NoError(t, s.UpdatePlace(ctx, p))

	got, err := s.GetPlace(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", got.Title)
	assert.Empty(t, got.Address)
	assert.Empty(t, got.Photos)
	assert.NotNil(t, got.Photos)
	assert.Equal(t, []string{"tv"}, got.Perks)
	assert.Zero(t, got.MaxGuests)
	assert.True(t, at(5).Equal(got.UpdatedAt))
	assert.True(t, at(1).Equal(got.CreatedAt))

	owned, err := s.ListPlacesByOwner(ctx, "usr-owner")
	require.NoError(t, err)
	assert.Len(t, owned, 1, "update must not duplicate owner index entries")
}

func testUpdateMissingPlace(t *testing.T, s store.Store) {
	p := newPlace("usr-owner", "Ghost", at(1))
	err := s.UpdatePlace(context.Background(), p)
	assert.ErrorIs(t, err, store.ErrPlaceNotFound)
}

func testListPlaces(t *testing.T, s store.Store) {
	ctx := context.Background()
	third := newPlace("usr-a", "Third", at(3))
	first := newPlace("usr-b", "First", at(1))
	second := newPlace("usr-a", "Second", at(2))
	for _, p := range []*domain.Place{third, first, second} {
		require.NoError(t, s.CreatePlace(ctx, p))
	}

	places, err := s.ListPlaces(ctx)
	require.NoError(t, err)
	require.Len(t, places, 3)
	assert.Equal(t, []string{"First", "Second", "Third"}, titles(places))

	again, err := s.ListPlaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, titles(places), titles(again))
}

func testListPlacesByOwner(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreatePlace(ctx, newPlace("usr-a", "A2", at(2))))
	require.NoError(t, s.CreatePlace(ctx, newPlace("usr-b", "B1", at(1))))
	require.NoError(t, s.CreatePlace(ctx, newPlace("usr-a", "A1", at(1))))

	places, err := s.ListPlacesByOwner(ctx, "usr-a")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, titles(places))
	for _, p := range places {
		assert.Equal(t, id.ID("usr-a"), p.Owner)
	}
}

func testBookings(t *testing.T, s store.Store) {
	ctx := context.Background()
	place := newPlace("usr-host", "Cabin", at(0))
	other := newPlace("usr-host", "Loft", at(0))
	require.NoError(t, s.CreatePlace(ctx, place))
	require.NoError(t, s.CreatePlace(ctx, other))

	later := newBooking(place.ID, "usr-guest", at(10))
	earlier := newBooking(other.ID, "usr-guest", at(5))
	foreign := newBooking(place.ID, "usr-someone", at(7))
	for _, b := range []*domain.Booking{later, earlier, foreign} {
		require.NoError(t, s.CreateBooking(ctx, b))
	}

	mine, err := s.ListBookingsByUser(ctx, "usr-guest")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, earlier.ID, mine[0].ID)
	assert.Equal(t, later.ID, mine[1].ID)
	assert.Equal(t, place.ID, mine[1].Place)
	assert.True(t, later.CheckIn.Equal(mine[1].CheckIn))
	assert.True(t, later.CheckOut.Equal(mine[1].CheckOut))
	assert.Equal(t, 2, mine[1].NumberOfGuests)
	assert.Equal(t, "+1 555 0100", mine[1].Phone)

	forPlace, err := s.ListBookingsByPlace(ctx, place.ID)
	require.NoError(t, err)
	require.Len(t, forPlace, 2)
	assert.Equal(t, foreign.ID, forPlace[0].ID)
	assert.Equal(t, later.ID, forPlace[1].ID)
}

func testEmptyLists(t *testing.T, s store.Store) {
	ctx := context.Background()

	places, err := s.ListPlaces(ctx)
	require.NoError(t, err)
	assert.NotNil(t, places)
	assert.Empty(t, places)

	owned, err := s.ListPlacesByOwner(ctx, "usr-nobody")
	require.NoError(t, err)
	assert.NotNil(t, owned)
	assert.Empty(t, owned)

	bookings, err := s.ListBookingsByUser(ctx, "usr-nobody")
	require.NoError(t, err)
	assert.NotNil(t, bookings)
	assert.Empty(t, bookings)
}

func titles(places []*domain.Place) []string {
	out := make([]string, len(places))
	for i, p := range places {
		out[i] = p.Title
	}
	return out
}
