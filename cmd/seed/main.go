// Package main seeds a StayBook database with demo hosts, places and
// bookings through the regular services, so the search index and cache see
// the same writes the API would make.
//
// Usage:
//
//	go run ./cmd/seed -data-path ~/StayBook/data
//	DATABASE_URL=mongodb://localhost:27017 go run ./cmd/seed -bookings=false
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/samber/do/v2"

	"github.com/staybook/staybook-server/internal/di"
	domainerrors "github.com/staybook/staybook-server/internal/errors"
	"github.com/staybook/staybook-server/internal/id"
	"github.com/staybook/staybook-server/internal/service"
)

const demoPassword = "StayBook-demo-1"

type demoUser struct {
	name, email string
}

var demoUsers = []demoUser{
	{"Avery Host", "avery@staybook.test"},
	{"Robin Guest", "robin@staybook.test"},
}

var demoPlaces = []service.PlaceInput{
	{
		Title:       "Harbour Loft",
		Address:     "1 Harbour Road, Lisbon",
		Description: "Bright loft over the water with a view of the bridge.",
		Perks:       []string{"wifi", "parking", "tv"},
		ExtraInfo:   "No parties.",
		CheckIn:     "14:00",
		CheckOut:    "11:00",
		MaxGuests:   4,
		Price:       120,
	},
	{
		Title:       "Pine Cabin",
		Address:     "9 Pine Trail, Sintra",
		Description: "Quiet wooden cabin in the forest with a fireplace.",
		Perks:       []string{"fireplace", "pets"},
		CheckIn:     "15:00",
		CheckOut:    "10:00",
		MaxGuests:   2,
		Price:       300,
	},
	{
		Title:       "City Studio",
		Address:     "22 Rua Augusta, Lisbon",
		Description: "Compact studio steps from the main square.",
		Perks:       []string{"wifi", "entrance"},
		CheckIn:     "16:00",
		CheckOut:    "11:00",
		MaxGuests:   2,
		Price:       75,
	},
}

func main() {
	// Flags not defined here are passed through to the config loader.
	seedFlags := flag.NewFlagSet("seed", flag.ContinueOnError)
	withBookings := seedFlags.Bool("bookings", true, "Create a demo booking for the guest account")
	args, rest := splitArgs(os.Args[1:], "bookings")
	if err := seedFlags.Parse(args); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}

	injector := di.NewServiceContainer(rest)
	if err := di.Bootstrap(injector, false); err != nil {
		log.Fatalf("Failed to bootstrap services: %v", err)
	}
	defer func() {
		if report := injector.Shutdown(); report != nil && len(report.Errors) > 0 {
			log.Printf("Shutdown error: %v", report.Error())
		}
	}()

	ctx := context.Background()
	authService := do.MustInvoke[*service.AuthService](injector)
	placeService := do.MustInvoke[*service.PlaceService](injector)
	bookingService := do.MustInvoke[*service.BookingService](injector)

	userIDs := make([]id.ID, 0, len(demoUsers))
	for _, u := range demoUsers {
		userID, err := ensureUser(ctx, authService, u)
		if err != nil {
			log.Fatalf("Failed to create user %s: %v", u.email, err)
		}
		userIDs = append(userIDs, userID)
	}
	host, guest := userIDs[0], userIDs[1]

	existing, err := placeService.ListPlacesByOwner(ctx, host)
	if err != nil {
		log.Fatalf("Failed to list places: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("Host already has %d places, nothing to do\n", len(existing))
		return
	}

	var firstPlace id.ID
	for _, in := range demoPlaces {
		place, err := placeService.CreatePlace(ctx, host, in)
		if err != nil {
			log.Fatalf("Failed to create place %q: %v", in.Title, err)
		}
		if firstPlace.IsZero() {
			firstPlace = place.ID
		}
		fmt.Printf("Created place %s (%s)\n", place.Title, place.ID)
	}

	if !*withBookings {
		return
	}

	checkIn := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, 14)
	booking, err := bookingService.CreateBooking(ctx, guest, service.BookingInput{
		Place:          firstPlace.String(),
		CheckIn:        checkIn,
		CheckOut:       checkIn.AddDate(0, 0, 3),
		NumberOfGuests: 2,
		Name:           demoUsers[1].name,
		Phone:          "+351 555 0100",
	})
	if err != nil {
		log.Fatalf("Failed to create booking: %v", err)
	}
	fmt.Printf("Created booking %s for %.2f\n", booking.ID, booking.Price)
}

// ensureUser registers u, or logs in when the email is already taken.
func ensureUser(ctx context.Context, authService *service.AuthService, u demoUser) (id.ID, error) {
	user, err := authService.Register(ctx, service.RegisterRequest{
		Name:     u.name,
		Email:    u.email,
		Password: demoPassword,
	})
	if err == nil {
		fmt.Printf("Created user %s (%s)\n", u.email, user.ID)
		return user.ID, nil
	}
	if !errors.Is(err, domainerrors.ErrAlreadyExists) {
		return id.Nil, err
	}

	res, err := authService.Login(ctx, service.LoginRequest{Email: u.email, Password: demoPassword})
	if err != nil {
		return id.Nil, fmt.Errorf("existing account with another password: %w", err)
	}
	fmt.Printf("Using existing user %s (%s)\n", u.email, res.ID)
	return res.ID, nil
}

// splitArgs separates the named seed flags from everything else.
func splitArgs(args []string, names ...string) (own, rest []string) {
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known["-"+n] = true
		known["--"+n] = true
	}
	for _, a := range args {
		name, _, _ := strings.Cut(a, "=")
		if known[name] {
			own = append(own, a)
		} else {
			rest = append(rest, a)
		}
	}
	return own, rest
}
