package api

import (
	"github.com/staybook/staybook-server/internal/media/uploads"
	"github.com/staybook/staybook-server/internal/service"
)

// Services groups all business logic services used by the API server.
type Services struct {
	Auth    *service.AuthService
	Place   *service.PlaceService
	Booking *service.BookingService
	Search  *service.SearchService // optional; search routes report 500 without it
}

// StorageServices groups file storage used by the API server.
type StorageServices struct {
	Uploads *uploads.Storage // Place photos
}
