package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/staybook/staybook-server/internal/domain"
	"github.com/staybook/staybook-server/internal/service"
)

func (s *Server) registerBookingRoutes() {
	bearer := []map[string][]string{{"bearer": {}}}

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBooking",
		Method:        http.MethodPost,
		Path:          "/bookings",
		Summary:       "Book a place",
		Tags:          []string{"Bookings"},
		Security:      bearer,
		DefaultStatus: http.StatusOK,
	}, s.handleCreateBooking)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBookings",
		Method:      http.MethodGet,
		Path:        "/bookings",
		Summary:     "List my bookings",
		Description: "Returns the caller's bookings with each place resolved",
		Tags:        []string{"Bookings"},
		Security:    bearer,
	}, s.handleListBookings)
}

// BookingRequest is the request body for a reservation.
type BookingRequest struct {
	_              struct{} `json:"-" additionalProperties:"true"`
	Place          string   `json:"place" required:"false" doc:"Place ID"`
	CheckIn        FlexTime `json:"checkIn" required:"false"`
	CheckOut       FlexTime `json:"checkOut" required:"false"`
	NumberOfGuests int      `json:"numberofGuests" required:"false" doc:"Guest count, at least 1"`
	Name           string   `json:"name" required:"false" doc:"Guest name"`
	Phone          string   `json:"phone" required:"false" doc:"Guest phone"`
	Price          float64  `json:"price" required:"false" doc:"Total price; 0 derives it from nights and the nightly price"`
}

// CreateBookingInput wraps the booking request for Huma.
type CreateBookingInput struct {
	Body BookingRequest
}

// BookingOutput wraps a created booking.
type BookingOutput struct {
	Body *domain.Booking
}

// BookingListOutput wraps a bare array of bookings.
type BookingListOutput struct {
	Body []domain.BookingWithPlace
}

func (s *Server) handleCreateBooking(ctx context.Context, input *CreateBookingInput) (*BookingOutput, error) {
	userID, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	booking, err := s.services.Booking.CreateBooking(ctx, userID, service.BookingInput{
		Place:          input.Body.Place,
		CheckIn:        input.Body.CheckIn.ToTime(),
		CheckOut:       input.Body.CheckOut.ToTime(),
		NumberOfGuests: input.Body.NumberOfGuests,
		Name:           input.Body.Name,
		Phone:          input.Body.Phone,
		Price:          input.Body.Price,
	})
	if err != nil {
		return nil, s.fail(err)
	}

	return &BookingOutput{Body: booking}, nil
}

func (s *Server) handleListBookings(ctx context.Context, _ *struct{}) (*BookingListOutput, error) {
	userID, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	bookings, err := s.services.Booking.ListBookings(ctx, userID)
	if err != nil {
		return nil, s.fail(err)
	}

	return &BookingListOutput{Body: bookings}, nil
}
