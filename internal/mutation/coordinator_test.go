package mutation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopdirect/shopdirect-manager/internal/cache"
	"github.com/shopdirect/shopdirect-manager/internal/entity"
	"github.com/shopdirect/shopdirect-manager/internal/query"
	"github.com/shopdirect/shopdirect-manager/internal/shopapi"
)

var testNow = time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, message)
}

func (n *recordingNotifier) Error(title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
}

type fixture struct {
	coordinator *Coordinator
	store       *cache.Store
	notifier    *recordingNotifier
	reconciled  [][]cache.Key
}

func newFixture(t *testing.T, handler http.Handler) *fixture {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	api := shopapi.New(shopapi.Config{BaseURL: server.URL, Timeout: 5 * time.Second})
	store := cache.New()
	q := query.New(api, store, query.Config{RetryDelay: time.Millisecond})

	f := &fixture{store: store, notifier: &recordingNotifier{}}
	f.coordinator = NewCoordinator(api, q, f.notifier, nil,
		WithNow(func() time.Time { return testNow }),
		WithTempID(func() string { return "temp-1" }),
		WithReconciler(func(ctx context.Context, keys []cache.Key) {
			f.reconciled = append(f.reconciled, keys)
		}),
	)
	return f
}

func seedProducts(store *cache.Store, products ...entity.Product) {
	store.Set(cache.CollectionKey(cache.Products), entity.ProductList{
		Products: products,
		Total:    len(products),
		Results:  len(products),
	})
}

func productInput() shopapi.ProductInput {
	return shopapi.ProductInput{
		Name:        "Desk Lamp",
		Description: "Adjustable brass desk lamp",
		Category:    "Home",
		Price:       decimal.NewFromInt(50),
	}
}

func TestCreateProductOptimisticThenAuthoritative(t *testing.T) {
	var f *fixture
	var duringCall entity.ProductList
	f = newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The optimistic entry must already be visible while the
		// upstream call is still in flight.
		duringCall, _ = cache.Value[entity.ProductList](f.store, cache.CollectionKey(cache.Products))
		w.Write([]byte(`{"status":"success","data":{"product":{"_id":"p-real","name":"Desk Lamp","price":50}}}`))
	}))
	seedProducts(f.store, entity.Product{ID: "p0", Name: "Mouse"})

	created, err := f.coordinator.CreateProduct(context.Background(), productInput())
	require.NoError(t, err)
	assert.Equal(t, "p-real", created.ID)

	require.Len(t, duringCall.Products, 2)
	assert.Equal(t, "temp-1", duringCall.Products[0].ID)
	assert.Equal(t, "Desk Lamp", duringCall.Products[0].Name)
	assert.Equal(t, 2, duringCall.Total)

	list, ok := cache.Value[entity.ProductList](f.store, cache.CollectionKey(cache.Products))
	require.True(t, ok)
	require.Len(t, list.Products, 2)
	assert.Equal(t, "p-real", list.Products[0].ID)
	assert.Equal(t, "p0", list.Products[1].ID)

	single, ok := cache.Value[entity.Product](f.store, cache.EntityKey(cache.Products, "p-real"))
	require.True(t, ok)
	assert.Equal(t, "Desk Lamp", single.Name)

	require.Len(t, f.reconciled, 1)
	assert.Contains(t, f.reconciled[0], cache.CollectionKey(cache.Products))
	assert.Equal(t, []string{"Product has been created successfully!"}, f.notifier.successes)
}

func TestCreateProductRollback(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":"fail","message":"Duplicate product name"}`))
	}))
	original := entity.Product{ID: "p0", Name: "Mouse"}
	seedProducts(f.store, original)
	before, _ := cache.Value[entity.ProductList](f.store, cache.CollectionKey(cache.Products))

	_, err := f.coordinator.CreateProduct(context.Background(), productInput())
	require.Error(t, err)
	assert.Equal(t, shopapi.KindValidation, shopapi.KindOf(err))

	after, ok := cache.Value[entity.ProductList](f.store, cache.CollectionKey(cache.Products))
	require.True(t, ok)
	assert.Equal(t, before, after)

	// The upstream message wins over the canned error text.
	assert.Equal(t, []string{"Duplicate product name"}, f.notifier.errors)
	// Rollback still settles.
	assert.Len(t, f.reconciled, 1)
}

func TestCreateProductValidation(t *testing.T) {
	var hits int
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	seedProducts(f.store)

	in := productInput()
	in.Name = ""
	_, err := f.coordinator.CreateProduct(context.Background(), in)
	require.Error(t, err)

	// Local validation failures never reach the upstream and never
	// touch the cache.
	assert.Equal(t, 0, hits)
	assert.Empty(t, f.reconciled)
	assert.Empty(t, f.notifier.errors)
}

func TestCreateProductCancelsInflightRefetch(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{"product":{"_id":"p-real","name":"Desk Lamp"}}}`))
	}))
	seedProducts(f.store)

	ctx, cancel := context.WithCancel(context.Background())
	f.store.TrackInflight(cache.CollectionKey(cache.Products), cancel)

	_, err := f.coordinator.CreateProduct(context.Background(), productInput())
	require.NoError(t, err)
	assert.Error(t, ctx.Err())
}

func TestUpdateProductMergesAndSwaps(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{"product":{"_id":"p0","name":"Desk Lamp","price":50,"stockQuantity":7}}}`))
	}))
	seedProducts(f.store, entity.Product{ID: "p0", Name: "Mouse", StockQuantity: 7})

	updated, err := f.coordinator.UpdateProduct(context.Background(), "p0", productInput())
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", updated.Name)

	list, _ := cache.Value[entity.ProductList](f.store, cache.CollectionKey(cache.Products))
	require.Len(t, list.Products, 1)
	assert.Equal(t, "Desk Lamp", list.Products[0].Name)
	assert.Equal(t, 7, list.Products[0].StockQuantity)

	assert.Equal(t, []string{"Product has been updated successfully!"}, f.notifier.successes)
}

func TestDeleteProductCommit(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	seedProducts(f.store,
		entity.Product{ID: "p0", Name: "Mouse"},
		entity.Product{ID: "p1", Name: "Lamp"},
	)
	f.store.Set(cache.EntityKey(cache.Products, "p1"), entity.Product{ID: "p1", Name: "Lamp"})

	err := f.coordinator.DeleteProduct(context.Background(), "p1")
	require.NoError(t, err)

	list, _ := cache.Value[entity.ProductList](f.store, cache.CollectionKey(cache.Products))
	require.Len(t, list.Products, 1)
	assert.Equal(t, "p0", list.Products[0].ID)
	assert.Equal(t, 1, list.Total)

	_, ok := f.store.Get(cache.EntityKey(cache.Products, "p1"))
	assert.False(t, ok)

	require.Len(t, f.reconciled, 1)
}

func TestDeleteProductRollbackRestoresEntity(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"status":"error","message":"boom"}`))
	}))
	seedProducts(f.store, entity.Product{ID: "p1", Name: "Lamp"})
	f.store.Set(cache.EntityKey(cache.Products, "p1"), entity.Product{ID: "p1", Name: "Lamp"})

	err := f.coordinator.DeleteProduct(context.Background(), "p1")
	require.Error(t, err)

	list, _ := cache.Value[entity.ProductList](f.store, cache.CollectionKey(cache.Products))
	require.Len(t, list.Products, 1)

	single, ok := cache.Value[entity.Product](f.store, cache.EntityKey(cache.Products, "p1"))
	require.True(t, ok)
	assert.Equal(t, "Lamp", single.Name)
}

func TestDeliverOrderOptimistic(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/o1/deliver", r.URL.Path)
		w.Write([]byte(`{"status":"success"}`))
	}))
	f.store.Set(cache.CollectionKey(cache.Orders), []entity.Order{
		{ID: "o1", CreatedAt: testNow},
		{ID: "o2", CreatedAt: testNow},
	})

	order, err := f.coordinator.DeliverOrder(context.Background(), "o1")
	require.NoError(t, err)
	assert.Nil(t, order)

	orders, _ := cache.Value[[]entity.Order](f.store, cache.CollectionKey(cache.Orders))
	require.Len(t, orders, 2)
	assert.True(t, orders[0].Delivered)
	assert.False(t, orders[1].Delivered)

	assert.Equal(t, []string{"Order status has been updated successfully!"}, f.notifier.successes)
}

func TestDeliverOrderRollback(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"status":"error","message":"boom"}`))
	}))
	f.store.Set(cache.CollectionKey(cache.Orders), []entity.Order{{ID: "o1", CreatedAt: testNow}})

	_, err := f.coordinator.DeliverOrder(context.Background(), "o1")
	require.Error(t, err)

	orders, _ := cache.Value[[]entity.Order](f.store, cache.CollectionKey(cache.Orders))
	require.Len(t, orders, 1)
	assert.False(t, orders[0].Delivered)
}
