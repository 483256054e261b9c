package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/staybook/staybook-server/internal/id"
)

func TestNewPlace(t *testing.T) {
	p := NewPlace("plc-1", "usr-1", PlaceDetails{
		Title:     "  Lake House ",
		Photos:    []string{"/a.jpg", " ", "/b.png"},
		Perks:     []string{"WiFi", "wifi", "Free Parking"},
		MaxGuests: 4,
		Price:     120,
	})

	assert.Equal(t, id.ID("plc-1"), p.ID)
	assert.Equal(t, id.ID("usr-1"), p.Owner)
	assert.Equal(t, "Lake House", p.Title)
	assert.Equal(t, []string{"/a.jpg", "/b.png"}, p.Photos)
	assert.Equal(t, []string{"wifi", "free-parking"}, p.Perks)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
}

func TestPlace_ApplyIsFullOverwrite(t *testing.T) {
	p := NewPlace("plc-1", "usr-1", PlaceDetails{
		Title:       "Old",
		Address:     "1 Main St",
		Description: "cozy",
		Perks:       []string{"tv"},
		ExtraInfo:   "no smoking",
		CheckIn:     "14:00",
		MaxGuests:   2,
		Price:       50,
	})
	p.PhotoPlaceholders = map[string]string{"/a.jpg": "LKO2?U%2Tw=w]~RBVZRi};RPxuwH"}

	p.Apply(PlaceDetails{Title: "New"})

	assert.Equal(t, "New", p.Title)
	assert.Empty(t, p.Address)
	assert.Empty(t, p.Description)
	assert.Empty(t, p.Perks)
	assert.NotNil(t, p.Perks)
	assert.Empty(t, p.ExtraInfo)
	assert.Empty(t, p.CheckIn)
	assert.Zero(t, p.MaxGuests)
	assert.Zero(t, p.Price)
	assert.Nil(t, p.PhotoPlaceholders)
	assert.Equal(t, id.ID("usr-1"), p.Owner, "owner is not editable")
}

func TestPlace_IsOwnedBy(t *testing.T) {
	p := &Place{Owner: "usr-1"}

	assert.True(t, p.IsOwnedBy("usr-1"))
	assert.False(t, p.IsOwnedBy("usr-2"))
	assert.False(t, p.IsOwnedBy(id.Nil))
	assert.False(t, (&Place{}).IsOwnedBy(id.Nil), "unowned place has no owner")
}

func TestPlace_Normalize(t *testing.T) {
	p := &Place{}
	p.Normalize()
	assert.NotNil(t, p.Photos)
	assert.NotNil(t, p.Perks)
}
