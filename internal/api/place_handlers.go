package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/staybook/staybook-server/internal/domain"
	"github.com/staybook/staybook-server/internal/service"
)

func (s *Server) registerPlaceRoutes() {
	bearer := []map[string][]string{{"bearer": {}}}

	huma.Register(s.api, huma.Operation{
		OperationID:   "createPlace",
		Method:        http.MethodPost,
		Path:          "/places",
		Summary:       "Create place",
		Description:   "Lists a new place owned by the caller",
		Tags:          []string{"Places"},
		Security:      bearer,
		DefaultStatus: http.StatusOK,
	}, s.handleCreatePlace)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePlace",
		Method:      http.MethodPut,
		Path:        "/places",
		Summary:     "Update place",
		Description: "Replaces every editable field of a place. Only the owner may update it.",
		Tags:        []string{"Places"},
		Security:    bearer,
	}, s.handleUpdatePlace)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPlaces",
		Method:      http.MethodGet,
		Path:        "/places",
		Summary:     "List places",
		Description: "Returns every place, oldest first",
		Tags:        []string{"Places"},
	}, s.handleListPlaces)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPlace",
		Method:      http.MethodGet,
		Path:        "/places/{id}",
		Summary:     "Get place",
		Tags:        []string{"Places"},
	}, s.handleGetPlace)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUserPlaces",
		Method:      http.MethodGet,
		Path:        "/user-places",
		Summary:     "List my places",
		Description: "Returns the places owned by the caller",
		Tags:        []string{"Places"},
		Security:    bearer,
	}, s.handleListUserPlaces)
}

// === DTOs ===

// PlaceRequest carries the editable place fields. Photos arrive as
// addedPhotos. Required fields are checked by the service so errors list
// every failing field at once.
type PlaceRequest struct {
	_           struct{} `json:"-" additionalProperties:"true"`
	Title       string   `json:"title" required:"false" doc:"Listing title"`
	Address     string   `json:"address" required:"false" doc:"Street address"`
	AddedPhotos []string `json:"addedPhotos" required:"false" doc:"Photo paths returned by /upload"`
	Description string   `json:"description" required:"false"`
	Perks       []string `json:"perks" required:"false" doc:"Amenity tags, e.g. wifi"`
	ExtraInfo   string   `json:"extraInfo" required:"false" doc:"House rules and other notes"`
	CheckIn     string   `json:"checkIn" required:"false" doc:"Check-in time of day, e.g. 14:00"`
	CheckOut    string   `json:"checkOut" required:"false" doc:"Check-out time of day, e.g. 11:00"`
	MaxGuests   int      `json:"maxGuests" required:"false" doc:"Guest capacity, 0 for unlimited"`
	Price       float64  `json:"price" required:"false" doc:"Price per night"`
}

func (r PlaceRequest) toInput() service.PlaceInput {
	return service.PlaceInput{
		Title:       r.Title,
		Address:     r.Address,
		Photos:      r.AddedPhotos,
		Description: r.Description,
		Perks:       r.Perks,
		ExtraInfo:   r.ExtraInfo,
		CheckIn:     r.CheckIn,
		CheckOut:    r.CheckOut,
		MaxGuests:   r.MaxGuests,
		Price:       r.Price,
	}
}

// CreatePlaceInput wraps the create request for Huma.
type CreatePlaceInput struct {
	Body PlaceRequest
}

// UpdatePlaceRequest is a PlaceRequest that names its target.
type UpdatePlaceRequest struct {
	_  struct{} `json:"-" additionalProperties:"true"`
	ID string   `json:"id" required:"false" doc:"Place ID"`
	PlaceRequest
}

// UpdatePlaceInput wraps the update request for Huma.
type UpdatePlaceInput struct {
	Body UpdatePlaceRequest
}

// PlaceOutput wraps a single place.
type PlaceOutput struct {
	Body *domain.Place
}

// PlaceListOutput wraps a bare array of places.
type PlaceListOutput struct {
	Body []*domain.Place
}

// GetPlaceInput contains parameters for getting a place.
type GetPlaceInput struct {
	ID string `path:"id" doc:"Place ID"`
}

// UserPlacesResponse contains the caller's places.
type UserPlacesResponse struct {
	PlacesData []*domain.Place `json:"placesData" doc:"Places owned by the caller"`
}

// UserPlacesOutput wraps the user places response for Huma.
type UserPlacesOutput struct {
	Body UserPlacesResponse
}

// OKOutput is the literal JSON string "OK".
type OKOutput struct {
	Body string
}

// === Handlers ===

func (s *Server) handleCreatePlace(ctx context.Context, input *CreatePlaceInput) (*PlaceOutput, error) {
	userID, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	place, err := s.services.Place.CreatePlace(ctx, userID, input.Body.toInput())
	if err != nil {
		return nil, s.fail(err)
	}

	return &PlaceOutput{Body: place}, nil
}

func (s *Server) handleUpdatePlace(ctx context.Context, input *UpdatePlaceInput) (*OKOutput, error) {
	userID, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.services.Place.UpdatePlace(ctx, userID, input.Body.ID, input.Body.toInput()); err != nil {
		return nil, s.fail(err)
	}

	return &OKOutput{Body: "OK"}, nil
}

func (s *Server) handleListPlaces(ctx context.Context, _ *struct{}) (*PlaceListOutput, error) {
	places, err := s.services.Place.ListPlaces(ctx)
	if err != nil {
		return nil, s.fail(err)
	}
	return &PlaceListOutput{Body: places}, nil
}

func (s *Server) handleGetPlace(ctx context.Context, input *GetPlaceInput) (*PlaceOutput, error) {
	place, err := s.services.Place.GetPlace(ctx, input.ID)
	if err != nil {
		return nil, s.fail(err)
	}
	return &PlaceOutput{Body: place}, nil
}

func (s *Server) handleListUserPlaces(ctx context.Context, _ *struct{}) (*UserPlacesOutput, error) {
	userID, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	places, err := s.services.Place.ListPlacesByOwner(ctx, userID)
	if err != nil {
		return nil, s.fail(err)
	}

	return &UserPlacesOutput{Body: UserPlacesResponse{PlacesData: places}}, nil
}
