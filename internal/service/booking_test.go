package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staybook/staybook-server/internal/domain"
	domainerrors "github.com/staybook/staybook-server/internal/errors"
	"github.com/staybook/staybook-server/internal/events"
	"github.com/staybook/staybook-server/internal/id"
	"github.com/staybook/staybook-server/internal/store"
	"github.com/staybook/staybook-server/internal/validation"
)

var checkIn = time.Date(2026, time.July, 10, 0, 0, 0, 0, time.UTC)

type bookingFixture struct {
	svc    *BookingService
	places *PlaceService
	store  *store.Badger
	pub    *recordingPublisher
	place  *domain.Place
	guest  id.ID
}

func setupBookingTest(t *testing.T, opts BookingOptions) *bookingFixture {
	t.Helper()

	s := newTestStore(t)
	v := validation.New()
	places := NewPlaceService(s, v, nil)
	svc := NewBookingService(s, v, opts, nil)
	pub := &recordingPublisher{}
	svc.SetPublisher(pub)

	place, err := places.CreatePlace(context.Background(), id.MustGenerate(id.PrefixUser), fullInput())
	require.NoError(t, err)

	return &bookingFixture{
		svc:    svc,
		places: places,
		store:  s,
		pub:    pub,
		place:  place,
		guest:  id.MustGenerate(id.PrefixUser),
	}
}

func (f *bookingFixture) input(nights int) BookingInput {
	return BookingInput{
		Place:          f.place.ID.String(),
		CheckIn:        checkIn,
		CheckOut:       checkIn.AddDate(0, 0, nights),
		NumberOfGuests: 2,
		Name:           "Grace Hopper",
		Phone:          "+1 555 0100",
		Price:          300,
	}
}

func TestBookingService_CreateAndList(t *testing.T) {
	f := setupBookingTest(t, BookingOptions{})
	ctx := context.Background()

	booking, err := f.svc.CreateBooking(ctx, f.guest, f.input(3))
	require.NoError(t, err)

	assert.True(t, booking.ID.HasPrefix(id.PrefixBooking))
	assert.Equal(t, f.guest, booking.User)
	assert.Equal(t, f.place.ID, booking.Place)
	assert.InDelta(t, 300.0, booking.Price, 0.001)
	assert.Equal(t, []string{events.BookingCreated}, f.pub.types())

	list, err := f.svc.ListBookings(ctx, f.guest)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, booking.ID, list[0].ID)
	require.NotNil(t, list[0].Place)
	assert.Equal(t, f.place.ID, list[0].Place.ID)
	assert.Equal(t, "Harbour Loft", list[0].Place.Title)

	others, err := f.svc.ListBookings(ctx, id.MustGenerate(id.PrefixUser))
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestBookingService_DefaultPrice(t *testing.T) {
	f := setupBookingTest(t, BookingOptions{})

	in := f.input(3)
	in.Price = 0
	booking, err := f.svc.CreateBooking(context.Background(), f.guest, in)
	require.NoError(t, err)
	assert.InDelta(t, 3*f.place.Price, booking.Price, 0.001)
}

func TestBookingService_Validation(t *testing.T) {
	f := setupBookingTest(t, BookingOptions{})

	tests := []struct {
		name   string
		mutate func(*BookingInput)
		field  string
	}{
		{"checkout before checkin", func(in *BookingInput) { in.CheckOut = in.CheckIn.Add(-time.Hour) }, "checkOut"},
		{"checkout equals checkin", func(in *BookingInput) { in.CheckOut = in.CheckIn }, "checkOut"},
		{"no guests", func(in *BookingInput) { in.NumberOfGuests = 0 }, "numberofGuests"},
		{"too many guests", func(in *BookingInput) { in.NumberOfGuests = 5 }, "numberofGuests"},
		{"missing name", func(in *BookingInput) { in.Name = "" }, "name"},
		{"missing checkin", func(in *BookingInput) { in.CheckIn = time.Time{} }, "checkIn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.input(2)
			tt.mutate(&in)

			_, err := f.svc.CreateBooking(context.Background(), f.guest, in)
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)

			var domErr *domainerrors.Error
			require.ErrorAs(t, err, &domErr)
			assert.Contains(t, domErr.Details, tt.field)
		})
	}

	assert.Empty(t, f.pub.types())
}

func TestBookingService_UnknownPlace(t *testing.T) {
	f := setupBookingTest(t, BookingOptions{})

	in := f.input(2)
	in.Place = "plc-missing"
	_, err := f.svc.CreateBooking(context.Background(), f.guest, in)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestBookingService_RequiresUser(t *testing.T) {
	f := setupBookingTest(t, BookingOptions{})

	_, err := f.svc.CreateBooking(context.Background(), id.Nil, f.input(2))
	assert.ErrorIs(t, err, domainerrors.ErrMissingToken)
}

func TestBookingService_Overlap(t *testing.T) {
	ctx := context.Background()

	t.Run("allowed by default", func(t *testing.T) {
		f := setupBookingTest(t, BookingOptions{})
		_, err := f.svc.CreateBooking(ctx, f.guest, f.input(3))
		require.NoError(t, err)
		_, err = f.svc.CreateBooking(ctx, id.MustGenerate(id.PrefixUser), f.input(2))
		assert.NoError(t, err)
	})

	t.Run("rejected when enabled", func(t *testing.T) {
		f := setupBookingTest(t, BookingOptions{RejectOverlap: true})
		_, err := f.svc.CreateBooking(ctx, f.guest, f.input(3))
		require.NoError(t, err)

		_, err = f.svc.CreateBooking(ctx, id.MustGenerate(id.PrefixUser), f.input(2))
		assert.ErrorIs(t, err, domainerrors.ErrConflict)

		// Back-to-back stays share a boundary day without overlapping.
		next := f.input(2)
		next.CheckIn = checkIn.AddDate(0, 0, 3)
		next.CheckOut = checkIn.AddDate(0, 0, 5)
		_, err = f.svc.CreateBooking(ctx, id.MustGenerate(id.PrefixUser), next)
		assert.NoError(t, err)
	})
}
