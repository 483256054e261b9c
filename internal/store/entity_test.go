package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staybook/staybook-server/internal/store"
)

type testDoc struct {
	ID    string    `json:"id"`
	Slug  string    `json:"slug"`
	Group string    `json:"group"`
	At    time.Time `json:"at"`
}

var errDocNotFound = errors.New("doc not found")
var errSlugTaken = errors.New("slug taken")

func newDocs(t *testing.T) *store.Entity[testDoc] {
	t.Helper()
	return store.NewEntity[testDoc](newTestStore(t), "doc:", errDocNotFound).
		WithUniqueIndex("slug", func(d *testDoc) []string { return []string{d.Slug} }, nil, errSlugTaken).
		WithIndex("group", func(d *testDoc) []string { return []string{d.Group} })
}

func TestEntity_CreateRejectsDuplicateID(t *testing.T) {
	docs := newDocs(t)
	ctx := context.Background()

	require.NoError(t, docs.Create(ctx, "1", &testDoc{ID: "1", Slug: "one"}))
	err := docs.Create(ctx, "1", &testDoc{ID: "1", Slug: "other"})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestEntity_UniqueIndexConflict(t *testing.T) {
	docs := newDocs(t)
	ctx := context.Background()

	require.NoError(t, docs.Create(ctx, "1", &testDoc{ID: "1", Slug: "one"}))
	err := docs.Create(ctx, "2", &testDoc{ID: "2", Slug: "one"})
	assert.ErrorIs(t, err, errSlugTaken)

	_, err = docs.Get(ctx, "2")
	assert.ErrorIs(t, err, errDocNotFound, "failed create must not write the document")
}

func TestEntity_UpdateMovesIndexes(t *testing.T) {
	docs := newDocs(t)
	ctx := context.Background()

	require.NoError(t, docs.Create(ctx, "1", &testDoc{ID: "1", Slug: "one", Group: "red"}))
	require.NoError(t, docs.Update(ctx, "1", &testDoc{ID: "1", Slug: "uno", Group: "blue"}))

	_, err := docs.GetByIndex(ctx, "slug", "one")
	assert.ErrorIs(t, err, errDocNotFound)
	got, err := docs.GetByIndex(ctx, "slug", "uno")
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)

	red, err := docs.ListByIndex(ctx, "group", "red")
	require.NoError(t, err)
	assert.Empty(t, red)
	blue, err := docs.ListByIndex(ctx, "group", "blue")
	require.NoError(t, err)
	assert.Len(t, blue, 1)

	// The freed slug can be taken by another document.
	require.NoError(t, docs.Create(ctx, "2", &testDoc{ID: "2", Slug: "one"}))
}

func TestEntity_UpdateKeepsOwnUniqueValue(t *testing.T) {
	docs := newDocs(t)
	ctx := context.Background()

	require.NoError(t, docs.Create(ctx, "1", &testDoc{ID: "1", Slug: "one"}))
	require.NoError(t, docs.Create(ctx, "2", &testDoc{ID: "2", Slug: "two"}))

	assert.NoError(t, docs.Update(ctx, "1", &testDoc{ID: "1", Slug: "one", Group: "g"}))
	assert.ErrorIs(t, docs.Update(ctx, "1", &testDoc{ID: "1", Slug: "two"}), errSlugTaken)
}

func TestEntity_ListSkipsIndexKeys(t *testing.T) {
	docs := newDocs(t)
	ctx := context.Background()

	for _, d := range []*testDoc{{ID: "a", Slug: "a", Group: "g"}, {ID: "b", Slug: "b", Group: "g"}} {
		require.NoError(t, docs.Create(ctx, d.ID, d))
	}

	all, err := docs.Collect(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestEntity_ListStopsEarly(t *testing.T) {
	docs := newDocs(t)
	ctx := context.Background()

	for _, slug := range []string{"a", "b", "c"} {
		require.NoError(t, docs.Create(ctx, slug, &testDoc{ID: slug, Slug: slug}))
	}

	seen := 0
	for doc, err := range docs.List(ctx) {
		require.NoError(t, err)
		require.NotNil(t, doc)
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)
}
