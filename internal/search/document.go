// Package search provides full-text place search using Bleve.
// Places are indexed on create and update, and the whole index is rebuilt
// from the store when it is empty or its mapping changes.
package search

import (
	"github.com/staybook/staybook-server/internal/domain"
)

// PlaceDocument is the indexed form of a place.
type PlaceDocument struct {
	ID          string
	Owner       string
	Title       string
	Address     string
	Description string
	ExtraInfo   string
	Perks       []string
	Price       float64
	MaxGuests   int
	CreatedAt   int64 // Unix millis
}

// PlaceToDocument converts a domain Place.
func PlaceToDocument(p *domain.Place) *PlaceDocument {
	return &PlaceDocument{
		ID:          p.ID.String(),
		Owner:       p.Owner.String(),
		Title:       p.Title,
		Address:     p.Address,
		Description: p.Description,
		ExtraInfo:   p.ExtraInfo,
		Perks:       p.Perks,
		Price:       p.Price,
		MaxGuests:   p.MaxGuests,
		CreatedAt:   p.CreatedAt.UnixMilli(),
	}
}

// ToMap converts the document to a map keyed by the mapped field names.
// Bleve would otherwise index Go field names.
func (d *PlaceDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"owner":      d.Owner,
		"title":      d.Title,
		"address":    d.Address,
		"price":      d.Price,
		"max_guests": d.MaxGuests,
		"created_at": d.CreatedAt,
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.ExtraInfo != "" {
		m["extra_info"] = d.ExtraInfo
	}
	if len(d.Perks) > 0 {
		m["perks"] = d.Perks
	}
	return m
}
