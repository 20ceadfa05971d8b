package query

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopdirect/shopdirect-manager/internal/cache"
	"github.com/shopdirect/shopdirect-manager/internal/entity"
	"github.com/shopdirect/shopdirect-manager/internal/shopapi"
)

const productsBody = `{"status":"success","total":1,"results":1,"data":{"products":[{"_id":"p1","name":"Lamp","price":50}]}}`

func testQuerier(t *testing.T, handler http.Handler) (*Querier, *cache.Store) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	api := shopapi.New(shopapi.Config{BaseURL: server.URL, Timeout: 5 * time.Second})
	store := cache.New()
	return New(api, store, Config{RetryDelay: time.Millisecond}), store
}

func TestFetchServesFreshCache(t *testing.T) {
	var hits atomic.Int32
	q, _ := testQuerier(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(productsBody))
	}))

	ctx := context.Background()
	first, err := q.Products(ctx)
	require.NoError(t, err)
	require.Len(t, first.Products, 1)
	assert.Equal(t, "Lamp", first.Products[0].Name)

	second, err := q.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), hits.Load())
}

func TestRefetchRetriesTransientFailures(t *testing.T) {
	var hits atomic.Int32
	q, _ := testQuerier(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"status":"error","message":"upstream hiccup"}`))
			return
		}
		w.Write([]byte(productsBody))
	}))

	list, err := q.Products(context.Background())
	require.NoError(t, err)
	assert.Len(t, list.Products, 1)
	// Initial attempt plus the two configured retries.
	assert.Equal(t, int32(3), hits.Load())
}

func TestRefetchGivesUpAfterRetryBudget(t *testing.T) {
	var hits atomic.Int32
	q, _ := testQuerier(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"status":"error","message":"still down"}`))
	}))

	_, err := q.Products(context.Background())
	require.Error(t, err)
	assert.Equal(t, shopapi.KindServer, shopapi.KindOf(err))
	assert.Equal(t, int32(3), hits.Load())
}

func TestRefetchDoesNotRetryValidationErrors(t *testing.T) {
	var hits atomic.Int32
	q, _ := testQuerier(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":"fail","message":"bad request"}`))
	}))

	_, err := q.Products(context.Background())
	require.Error(t, err)
	assert.Equal(t, shopapi.KindValidation, shopapi.KindOf(err))
	assert.Equal(t, int32(1), hits.Load())
}

func TestCancelledFetchNeverWrites(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	q, store := testQuerier(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		w.Write([]byte(productsBody))
	}))
	defer close(release)

	errCh := make(chan error, 1)
	go func() {
		_, err := q.RefetchProducts(context.Background())
		errCh <- err
	}()

	<-started
	store.CancelInflight(cache.CollectionKey(cache.Products))

	err := <-errCh
	require.Error(t, err)

	_, ok := cache.Value[entity.ProductList](store, cache.CollectionKey(cache.Products))
	assert.False(t, ok)
}

func TestCancelInflightCoversConcurrentRefetches(t *testing.T) {
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	q, store := testQuerier(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started <- struct{}{}
		<-release
		w.Write([]byte(productsBody))
	}))

	key := cache.CollectionKey(cache.Products)
	errCh := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := q.RefetchProducts(context.Background())
			errCh <- err
		}()
	}
	<-started
	<-started

	// A mutation cancels both outstanding fetches before writing its
	// optimistic value. Neither fetch, whenever it completes, may
	// overwrite that value.
	store.CancelInflight(key)
	optimistic := entity.ProductList{
		Total:    1,
		Results:  1,
		Products: []entity.Product{{ID: "temp-1", Name: "Draft Lamp"}},
	}
	store.Set(key, optimistic)
	close(release)

	require.Error(t, <-errCh)
	require.Error(t, <-errCh)

	got, ok := cache.Value[entity.ProductList](store, key)
	require.True(t, ok)
	assert.Equal(t, optimistic, got)
}

func TestCollections(t *testing.T) {
	q, _ := testQuerier(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products":
			w.Write([]byte(productsBody))
		case "/orders":
			w.Write([]byte(`{"status":"success","data":{"orders":[{"_id":"o1","totalPrice":120,"createdAt":"2026-06-01T00:00:00Z"}]}}`))
		case "/users":
			w.Write([]byte(`{"status":"success","data":{"users":[{"_id":"u1","name":"Ada"}]}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"status":"fail","message":"not found"}`))
		}
	}))

	orders, customers, products, err := q.Collections(context.Background())
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Len(t, customers, 1)
	assert.Len(t, products.Products, 1)
}
