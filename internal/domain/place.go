package domain

import (
	"strings"

	"github.com/staybook/staybook-server/internal/id"
	"github.com/staybook/staybook-server/internal/util"
)

// Place is a bookable property listed by its owner.
type Place struct {
	ID          id.ID    `json:"_id" bson:"_id"`
	Owner       id.ID    `json:"owner" bson:"owner"`
	Title       string   `json:"title" bson:"title"`
	Address     string   `json:"address" bson:"address"`
	Photos      []string `json:"photos" bson:"photos"`
	Description string   `json:"description" bson:"description"`
	Perks       []string `json:"perks" bson:"perks"`
	ExtraInfo   string   `json:"extraInfo" bson:"extraInfo"`
	// CheckIn and CheckOut are free-form times of day, e.g. "14:00".
	CheckIn   string  `json:"checkIn" bson:"checkIn"`
	CheckOut  string  `json:"checkOut" bson:"checkOut"`
	MaxGuests int     `json:"maxGuests" bson:"maxGuests"`
	Price     float64 `json:"price" bson:"price"`
	// PhotoPlaceholders maps a photo path to its BlurHash.
	PhotoPlaceholders map[string]string `json:"photoPlaceholders,omitempty" bson:"photoPlaceholders,omitempty"`

	Timestamps `bson:",inline"`
}

// PlaceDetails are the owner-editable fields of a Place.
type PlaceDetails struct {
	Title       string
	Address     string
	Photos      []string
	Description string
	Perks       []string
	ExtraInfo   string
	CheckIn     string
	CheckOut    string
	MaxGuests   int
	Price       float64
}

// NewPlace builds a place owned by owner from details.
func NewPlace(placeID, owner id.ID, details PlaceDetails) *Place {
	p := &Place{ID: placeID, Owner: owner}
	p.Apply(details)
	p.InitTimestamps()
	return p
}

// Apply overwrites every editable field with details. Fields missing from
// details become empty; nothing from the previous state survives.
func (p *Place) Apply(d PlaceDetails) {
	p.Title = strings.TrimSpace(d.Title)
	p.Address = strings.TrimSpace(d.Address)
	p.Photos = cleanPhotos(d.Photos)
	p.Description = d.Description
	p.Perks = util.NormalizePerks(d.Perks)
	p.ExtraInfo = d.ExtraInfo
	p.CheckIn = strings.TrimSpace(d.CheckIn)
	p.CheckOut = strings.TrimSpace(d.CheckOut)
	p.MaxGuests = d.MaxGuests
	p.Price = d.Price
	p.PhotoPlaceholders = nil
}

// IsOwnedBy reports whether user owns the place.
func (p *Place) IsOwnedBy(user id.ID) bool {
	return !user.IsZero() && p.Owner == user
}

// Normalize restores the invariants documents loaded from storage may lack.
func (p *Place) Normalize() {
	if p.Photos == nil {
		p.Photos = []string{}
	}
	if p.Perks == nil {
		p.Perks = []string{}
	}
}

// cleanPhotos drops blank entries and keeps the given order.
func cleanPhotos(photos []string) []string {
	out := make([]string, 0, len(photos))
	for _, photo := range photos {
		if photo = strings.TrimSpace(photo); photo != "" {
			out = append(out, photo)
		}
	}
	return out
}
