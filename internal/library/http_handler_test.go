package library

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shelfsnap/internal/httpx"
	"shelfsnap/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestMux registers the handler on the same method patterns the server
// uses, so path values resolve the way they do in production.
func newTestMux(h *HTTPHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/books/{id}", h.Delete)
	mux.HandleFunc("DELETE /api/uploads/{uploadId}", h.UndoUpload)
	return mux
}

func TestHTTPHandler_List(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	handler := NewHTTPHandler(NewService(store, nil))

	_, err := store.Create(ctx, &Book{Title: "Dune", Author: "Frank Herbert"}, "u1", "owner-a")
	require.NoError(t, err)
	_, err = store.Create(ctx, &Book{Title: "Emma", Author: "Jane Austen"}, "u1", "owner-b")
	require.NoError(t, err)

	t.Run("returns only the owner's books", func(t *testing.T) {
		r := testutil.NewRequest("GET", "/api/books", nil)
		r = r.WithContext(httpx.ContextWithOwner(r.Context(), "owner-a"))
		w := httptest.NewRecorder()
		handler.List(w, r)

		resp := testutil.RecordHTTPResponse(w)
		require.Equal(t, 200, resp.Code)
		books := resp.Body["data"].([]interface{})
		require.Len(t, books, 1)
		assert.Equal(t, "Dune", books[0].(map[string]interface{})["title"])
	})

	t.Run("q filters by substring", func(t *testing.T) {
		r := testutil.NewRequest("GET", "/api/books?q=austen", nil)
		r = r.WithContext(httpx.ContextWithOwner(r.Context(), "owner-b"))
		w := httptest.NewRecorder()
		handler.List(w, r)

		resp := testutil.RecordHTTPResponse(w)
		require.Equal(t, 200, resp.Code)
		books := resp.Body["data"].([]interface{})
		require.Len(t, books, 1)
		assert.Equal(t, "Emma", books[0].(map[string]interface{})["title"])
	})

	t.Run("empty library is an empty array", func(t *testing.T) {
		r := testutil.NewRequest("GET", "/api/books", nil)
		r = r.WithContext(httpx.ContextWithOwner(r.Context(), "owner-c"))
		w := httptest.NewRecorder()
		handler.List(w, r)

		resp := testutil.RecordHTTPResponse(w)
		require.Equal(t, 200, resp.Code)
		assert.NotNil(t, resp.Body["data"])
		assert.Empty(t, resp.Body["data"])
	})
}

func TestHTTPHandler_DeleteAndUndo(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	handler := NewHTTPHandler(NewService(store, nil))

	mux := newTestMux(handler)

	created, err := store.Create(ctx, &Book{Title: "Dune", Author: "Frank Herbert"}, "upload-1", "owner-a")
	require.NoError(t, err)
	_, err = store.Create(ctx, &Book{Title: "Messiah", Author: "Frank Herbert"}, "upload-1", "owner-a")
	require.NoError(t, err)

	t.Run("foreign delete is a 204 no-op", func(t *testing.T) {
		r := testutil.NewRequest("DELETE", fmt.Sprintf("/api/books/%d", created.ID), nil)
		r = r.WithContext(httpx.ContextWithOwner(r.Context(), "owner-b"))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, r)

		assert.Equal(t, 204, w.Code)
		_, err := store.GetByID(ctx, created.ID, "owner-a")
		assert.NoError(t, err, "record must survive a foreign delete")
	})

	t.Run("undo removes the whole upload", func(t *testing.T) {
		r := testutil.NewRequest("DELETE", "/api/uploads/upload-1", nil)
		r = r.WithContext(httpx.ContextWithOwner(r.Context(), "owner-a"))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, r)

		assert.Equal(t, 204, w.Code)
		books, err := store.ListByOwner(ctx, "owner-a")
		require.NoError(t, err)
		assert.Empty(t, books)
	})

	t.Run("undo twice is still a 204", func(t *testing.T) {
		r := testutil.NewRequest("DELETE", "/api/uploads/upload-1", nil)
		r = r.WithContext(httpx.ContextWithOwner(r.Context(), "owner-a"))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, r)

		assert.Equal(t, 204, w.Code)
	})

	t.Run("bad id is a 400", func(t *testing.T) {
		r := testutil.NewRequest("DELETE", "/api/books/not-a-number", nil)
		r = r.WithContext(httpx.ContextWithOwner(r.Context(), "owner-a"))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, r)

		assert.Equal(t, 400, w.Code)
	})
}

func TestHTTPHandler_Export(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	handler := NewHTTPHandler(NewService(store, nil))

	_, err := store.Create(ctx, &Book{Title: "Dune", Author: "Frank Herbert"}, "u1", "owner-a")
	require.NoError(t, err)

	r := testutil.NewRequest("GET", "/api/export", nil)
	r = r.WithContext(httpx.ContextWithOwner(r.Context(), "owner-a"))
	w := httptest.NewRecorder()
	handler.Export(w, r)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "my-library.csv")
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "Title,Author,ISBN"))
	assert.Contains(t, body, "Dune,Frank Herbert")
}
