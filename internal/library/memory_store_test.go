package library

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_OwnershipIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	created, err := store.Create(ctx, &Book{Title: "Dune", Author: "Frank Herbert"}, "upload-1", "owner-a")
	require.NoError(t, err)

	t.Run("foreign get reports not found", func(t *testing.T) {
		_, err := store.GetByID(ctx, created.ID, "owner-b")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("foreign search returns nothing", func(t *testing.T) {
		books, err := store.SearchByText(ctx, "dune", "owner-b")
		require.NoError(t, err)
		assert.Empty(t, books)
	})

	t.Run("foreign delete is a no-op", func(t *testing.T) {
		require.NoError(t, store.DeleteByID(ctx, created.ID, "owner-b"))

		got, err := store.GetByID(ctx, created.ID, "owner-a")
		require.NoError(t, err)
		assert.Equal(t, "Dune", got.Title)
	})

	t.Run("foreign list is empty", func(t *testing.T) {
		books, err := store.ListByOwner(ctx, "owner-b")
		require.NoError(t, err)
		assert.Empty(t, books)
	})
}

func TestMemoryStore_DeleteByUpload(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Create(ctx, &Book{Title: "A", Author: "X"}, "upload-1", "owner-a")
	require.NoError(t, err)
	_, err = store.Create(ctx, &Book{Title: "B", Author: "X"}, "upload-1", "owner-a")
	require.NoError(t, err)
	kept, err := store.Create(ctx, &Book{Title: "C", Author: "X"}, "upload-2", "owner-a")
	require.NoError(t, err)
	foreign, err := store.Create(ctx, &Book{Title: "D", Author: "X"}, "upload-1", "owner-b")
	require.NoError(t, err)

	require.NoError(t, store.DeleteByUpload(ctx, "upload-1", "owner-a"))

	books, err := store.ListByOwner(ctx, "owner-a")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, kept.ID, books[0].ID)

	// Another owner's records in the same upload id space stay put.
	_, err = store.GetByID(ctx, foreign.ID, "owner-b")
	assert.NoError(t, err)

	// Undo twice: the second call is a no-op, not an error.
	require.NoError(t, store.DeleteByUpload(ctx, "upload-1", "owner-a"))
	books, err = store.ListByOwner(ctx, "owner-a")
	require.NoError(t, err)
	assert.Len(t, books, 1)
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })
	_, err := store.Create(ctx, &Book{Title: "Old", Author: "X"}, "u1", "owner-a")
	require.NoError(t, err)

	store.SetClock(func() time.Time { return now.Add(time.Hour) })
	_, err = store.Create(ctx, &Book{Title: "New", Author: "X"}, "u2", "owner-a")
	require.NoError(t, err)

	books, err := store.ListByOwner(ctx, "owner-a")
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "New", books[0].Title)
	assert.Equal(t, "Old", books[1].Title)
}

func TestMemoryStore_SearchByText(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Create(ctx, &Book{Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin"}, "u1", "owner-a")
	require.NoError(t, err)
	_, err = store.Create(ctx, &Book{Title: "Neuromancer", Author: "William Gibson"}, "u1", "owner-a")
	require.NoError(t, err)

	t.Run("matches title substring case-insensitively", func(t *testing.T) {
		books, err := store.SearchByText(ctx, "LEFT HAND", "owner-a")
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "The Left Hand of Darkness", books[0].Title)
	})

	t.Run("matches author substring", func(t *testing.T) {
		books, err := store.SearchByText(ctx, "gibson", "owner-a")
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "Neuromancer", books[0].Title)
	})

	t.Run("no match yields empty, not error", func(t *testing.T) {
		books, err := store.SearchByText(ctx, "tolkien", "owner-a")
		require.NoError(t, err)
		assert.Empty(t, books)
	})
}

func TestMemoryStore_CountCreatedSince_MonthBoundary(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	// Created one second before the month turns over.
	endOfMarch := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)
	store.SetClock(func() time.Time { return endOfMarch })
	_, err := store.Create(ctx, &Book{Title: "March Book", Author: "X"}, "u1", "owner-a")
	require.NoError(t, err)

	startOfMarch := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	startOfApril := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	march, err := store.CountCreatedSince(ctx, "owner-a", startOfMarch)
	require.NoError(t, err)
	assert.Equal(t, 1, march, "record belongs to March's window")

	april, err := store.CountCreatedSince(ctx, "owner-a", startOfApril)
	require.NoError(t, err)
	assert.Equal(t, 0, april, "record must not leak into April's window")

	// Records created exactly at the window start are counted.
	store.SetClock(func() time.Time { return startOfApril })
	_, err = store.Create(ctx, &Book{Title: "April Book", Author: "X"}, "u2", "owner-a")
	require.NoError(t, err)

	april, err = store.CountCreatedSince(ctx, "owner-a", startOfApril)
	require.NoError(t, err)
	assert.Equal(t, 1, april)
}
