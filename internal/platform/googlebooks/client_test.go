package googlebooks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("test-key", 100, 1)
	c.baseURL = srv.URL
	return c
}

func TestClient_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("passes query, key and result cap", func(t *testing.T) {
		var gotQuery, gotKey, gotMax string
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query().Get("q")
			gotKey = r.URL.Query().Get("key")
			gotMax = r.URL.Query().Get("maxResults")
			w.Write([]byte(`{"totalItems":1,"items":[{"id":"v1","volumeInfo":{"title":"Dune","authors":["Frank Herbert"]}}]}`))
		})

		volumes, err := c.Search(ctx, "Dune Herbert")
		require.NoError(t, err)
		require.Len(t, volumes, 1)
		assert.Equal(t, "v1", volumes[0].ID)
		assert.Equal(t, "Dune", volumes[0].VolumeInfo.Title)
		assert.Equal(t, "Dune Herbert", gotQuery)
		assert.Equal(t, "test-key", gotKey)
		assert.Equal(t, "5", gotMax)
	})

	t.Run("zero results is an empty slice, not an error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"totalItems":0}`))
		})

		volumes, err := c.Search(ctx, "no such book")
		require.NoError(t, err)
		assert.Empty(t, volumes)
	})

	t.Run("retries a 500 then succeeds", func(t *testing.T) {
		calls := 0
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte(`{"totalItems":1,"items":[{"id":"v1","volumeInfo":{"title":"Dune"}}]}`))
		})

		volumes, err := c.Search(ctx, "Dune")
		require.NoError(t, err)
		assert.Len(t, volumes, 1)
		assert.Equal(t, 2, calls)
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		calls := 0
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusBadRequest)
		})

		_, err := c.Search(ctx, "Dune")
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

func TestClient_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes a volume", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/volumes/v1", r.URL.Path)
			w.Write([]byte(`{"id":"v1","volumeInfo":{"title":"Dune","pageCount":412,"industryIdentifiers":[{"type":"ISBN_13","identifier":"9780441172719"}]}}`))
		})

		v, err := c.GetByID(ctx, "v1")
		require.NoError(t, err)
		assert.Equal(t, "Dune", v.VolumeInfo.Title)
		assert.Equal(t, 412, v.VolumeInfo.PageCount)
		require.Len(t, v.VolumeInfo.IndustryIdentifiers, 1)
		assert.Equal(t, "9780441172719", v.VolumeInfo.IndustryIdentifiers[0].Identifier)
	})

	t.Run("unknown id reports not found", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := c.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
