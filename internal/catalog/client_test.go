package catalog_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"prodash/internal/catalog"
	"prodash/internal/stubapi"
)

func newClient(t *testing.T) *catalog.Client {
	t.Helper()
	srv := httptest.NewServer(stubapi.NewServer(stubapi.NewStore(stubapi.SeedProducts()...)).Router())
	t.Cleanup(srv.Close)
	return catalog.New(srv.URL)
}

func TestList_Unfiltered(t *testing.T) {
	c := newClient(t)

	res, err := c.List(context.Background(), catalog.ListQuery{Page: 0, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, res.Items, 10)
	require.Equal(t, 12, res.Total)
	require.Equal(t, 0, res.Skip)
}

func TestList_SecondPage(t *testing.T) {
	c := newClient(t)

	res, err := c.List(context.Background(), catalog.ListQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	require.Equal(t, 10, res.Skip)
}

func TestList_CategoryWinsOverSearch(t *testing.T) {
	c := newClient(t)

	// Search alone matches "Standing Desk" and "Desk Lamp"; with a category
	// set the category endpoint must be used instead.
	res, err := c.List(context.Background(), catalog.ListQuery{
		PageSize: 10,
		Search:   "desk",
		Category: "groceries",
	})
	require.NoError(t, err)
	require.Equal(t, 2, res.Total)
	for _, p := range res.Items {
		require.Equal(t, "groceries", p.Category)
	}
}

func TestList_Search(t *testing.T) {
	c := newClient(t)

	res, err := c.List(context.Background(), catalog.ListQuery{PageSize: 10, Search: "desk"})
	require.NoError(t, err)
	require.Equal(t, 2, res.Total)
}

func TestGet_NotFound(t *testing.T) {
	c := newClient(t)

	_, err := c.Get(context.Background(), 404404)
	require.Error(t, err)
	require.ErrorIs(t, err, catalog.ErrNotFound)

	var serr *catalog.ServiceError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, http.StatusNotFound, serr.Status)
	require.NotEmpty(t, serr.Message)
}

func TestAddUpdateDelete(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	created, err := c.Add(ctx, catalog.Draft{Title: "Widget", Price: 5, Category: "electronics", Stock: 1})
	require.NoError(t, err)
	require.NotZero(t, created.ID, "service assigns the id")

	updated, err := c.Update(ctx, created.ID, catalog.Draft{Title: "Widget v2", Price: 6, Category: "electronics", Stock: 2})
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, "Widget v2", updated.Title)

	deleted, err := c.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, deleted.ID, "delete returns the removed record")

	_, err = c.Get(ctx, created.ID)
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestCategories(t *testing.T) {
	c := newClient(t)

	cats, err := c.Categories(context.Background())
	require.NoError(t, err)
	require.Contains(t, cats, "electronics")
	require.Contains(t, cats, "sports")
}

func TestReadRetriesOnceOnTransportFailure(t *testing.T) {
	// First connection is torn down before a response; the retry succeeds.
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			conn, _, err := w.(http.Hijacker).Hijack()
			require.NoError(t, err)
			conn.Close()
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"products":[],"total":0,"skip":0,"limit":10}`))
	}))
	defer srv.Close()

	c := catalog.New(srv.URL)
	_, err := c.List(context.Background(), catalog.ListQuery{PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestWritesNeverRetry(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		conn, _, err := w.(http.Hijacker).Hijack()
		require.NoError(t, err)
		conn.Close()
	}))
	defer srv.Close()

	c := catalog.New(srv.URL)
	_, err := c.Add(context.Background(), catalog.Draft{Title: "x"})
	require.Error(t, err)

	var terr *catalog.TransportError
	require.ErrorAs(t, err, &terr)
	require.Equal(t, 1, calls, "a failed write must not be retried")
}

func TestTransportError_Unreachable(t *testing.T) {
	// A closed server yields connection-refused on every attempt.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := catalog.New(srv.URL)
	_, err := c.List(context.Background(), catalog.ListQuery{PageSize: 10})

	var terr *catalog.TransportError
	require.ErrorAs(t, err, &terr)
	require.Equal(t, "list", terr.Op)

	var serr *catalog.ServiceError
	require.False(t, errors.As(err, &serr), "no response received, must not be a ServiceError")
}

func TestServiceError_CarriesStatusAndMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"database exploded"}`))
	}))
	defer srv.Close()

	c := catalog.New(srv.URL)
	_, err := c.Delete(context.Background(), 1)

	var serr *catalog.ServiceError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, http.StatusInternalServerError, serr.Status)
	require.Equal(t, "database exploded", serr.Message)
	require.NotErrorIs(t, err, catalog.ErrNotFound)
}
