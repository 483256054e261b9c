package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staybook/staybook-server/internal/domain"
	"github.com/staybook/staybook-server/internal/id"
)

func setupTestIndex(t *testing.T) (*SearchIndex, string) {
	t.Helper()

	dir := t.TempDir()
	index, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	return index, dir
}

var base = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func place(n int, title, address string, price float64, guests int, perks ...string) *domain.Place {
	p := domain.NewPlace(id.ID("plc-"+string(rune('a'+n))), "usr-owner", domain.PlaceDetails{
		Title:       title,
		Address:     address,
		Description: "A lovely stay for " + title,
		Perks:       perks,
		MaxGuests:   guests,
		Price:       price,
	})
	p.CreatedAt = base.Add(time.Duration(n) * time.Minute)
	p.UpdatedAt = p.CreatedAt
	return p
}

func fixtures() []*domain.Place {
	return []*domain.Place{
		place(0, "Cozy Cabin in the Woods", "12 Pine Road, Asheville", 120, 4, "wifi", "free parking"),
		place(1, "Beach House", "1 Ocean Drive, Malibu", 450, 10, "wifi", "pool"),
		place(2, "City Studio", "99 Market Street, Denver", 80, 2, "wifi"),
		place(3, "Mountain Cabins", "7 Summit Way, Aspen", 300, 0, "fireplace"),
	}
}

func hitIDs(res *SearchResult) []id.ID {
	ids := make([]id.ID, 0, len(res.Hits))
	for _, h := range res.Hits {
		ids = append(ids, h.ID)
	}
	return ids
}

func TestNewSearchIndex(t *testing.T) {
	index, dir := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	version, err := os.ReadFile(filepath.Join(dir, "search.version"))
	require.NoError(t, err)
	assert.Equal(t, mappingVersion, string(version))
}

func TestSearch_EmptyQueryListsAllInCreationOrder(t *testing.T) {
	index, _ := setupTestIndex(t)
	require.NoError(t, index.IndexPlaces(fixtures()))

	res, err := index.Search(context.Background(), SearchParams{})
	require.NoError(t, err)

	assert.Equal(t, uint64(4), res.Total)
	assert.Equal(t, []id.ID{"plc-a", "plc-b", "plc-c", "plc-d"}, hitIDs(res))
	assert.Equal(t, "Cozy Cabin in the Woods", res.Hits[0].Title)
	assert.Equal(t, "12 Pine Road, Asheville", res.Hits[0].Address)
	assert.Equal(t, 120.0, res.Hits[0].Price)
}

func TestSearch_Text(t *testing.T) {
	index, _ := setupTestIndex(t)
	require.NoError(t, index.IndexPlaces(fixtures()))

	res, err := index.Search(context.Background(), SearchParams{Query: "cabin"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []id.ID{"plc-a", "plc-d"}, hitIDs(res))

	res, err = index.Search(context.Background(), SearchParams{Query: "malibu"})
	require.NoError(t, err)
	assert.Equal(t, []id.ID{"plc-b"}, hitIDs(res))
	assert.Greater(t, res.Hits[0].Score, 0.0)
}

func TestSearch_Filters(t *testing.T) {
	index, _ := setupTestIndex(t)
	require.NoError(t, index.IndexPlaces(fixtures()))
	ctx := context.Background()

	tests := []struct {
		name   string
		params SearchParams
		want   []id.ID
	}{
		{"single perk", SearchParams{Perks: []string{"pool"}}, []id.ID{"plc-b"}},
		{"all perks required", SearchParams{Perks: []string{"wifi", "free-parking"}}, []id.ID{"plc-a"}},
		{"min price", SearchParams{MinPrice: 300}, []id.ID{"plc-b", "plc-d"}},
		{"max price inclusive", SearchParams{MaxPrice: 120}, []id.ID{"plc-a", "plc-c"}},
		{"price range", SearchParams{MinPrice: 100, MaxPrice: 350}, []id.ID{"plc-a", "plc-d"}},
		{"guests include unlimited", SearchParams{Guests: 5}, []id.ID{"plc-b", "plc-d"}},
		{"text and filter", SearchParams{Query: "cabin", MaxPrice: 200}, []id.ID{"plc-a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := index.Search(ctx, tt.params)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, hitIDs(res))
		})
	}
}

func TestSearch_Pagination(t *testing.T) {
	index, _ := setupTestIndex(t)
	require.NoError(t, index.IndexPlaces(fixtures()))

	res, err := index.Search(context.Background(), SearchParams{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, uint64(4), res.Total)
	assert.Equal(t, []id.ID{"plc-b", "plc-c"}, hitIDs(res))
}

func TestIndexPlace_ReplacesOnUpdate(t *testing.T) {
	index, _ := setupTestIndex(t)
	p := fixtures()[0]
	require.NoError(t, index.IndexPlace(p))

	p.Apply(domain.PlaceDetails{Title: "Lakeside Lodge", Address: p.Address, Price: 95})
	require.NoError(t, index.IndexPlace(p))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	res, err := index.Search(context.Background(), SearchParams{Query: "cabin"})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)

	res, err = index.Search(context.Background(), SearchParams{Query: "lodge"})
	require.NoError(t, err)
	assert.Equal(t, []id.ID{p.ID}, hitIDs(res))
}

func TestDeletePlace(t *testing.T) {
	index, _ := setupTestIndex(t)
	require.NoError(t, index.IndexPlaces(fixtures()))
	require.NoError(t, index.DeletePlace("plc-a"))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestRebuild(t *testing.T) {
	index, _ := setupTestIndex(t)
	require.NoError(t, index.IndexPlaces(fixtures()))

	require.NoError(t, index.Rebuild(fixtures()[:2]))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestNewSearchIndex_ReopenKeepsDocuments(t *testing.T) {
	dir := t.TempDir()
	index, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, index.IndexPlaces(fixtures()))
	require.NoError(t, index.Close())

	index, err = NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	defer func() { _ = index.Close() }()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)
}

func TestNewSearchIndex_VersionMismatchDropsIndex(t *testing.T) {
	dir := t.TempDir()
	index, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, index.IndexPlaces(fixtures()))
	require.NoError(t, index.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "search.version"), []byte("0"), 0o644))

	index, err = NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	defer func() { _ = index.Close() }()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestBuildSearchQuery_MatchAllWithoutInput(t *testing.T) {
	_, ok := buildSearchQuery(SearchParams{Query: ""}).(*query.MatchAllQuery)
	assert.True(t, ok)

	_, ok = buildSearchQuery(SearchParams{Perks: []string{"wifi"}}).(*query.TermQuery)
	assert.True(t, ok)

	_, ok = buildSearchQuery(SearchParams{Query: "x", Guests: 2}).(*query.ConjunctionQuery)
	assert.True(t, ok)
}
