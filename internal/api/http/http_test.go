package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopdirect/shopdirect-manager/internal/analytics"
	"github.com/shopdirect/shopdirect-manager/internal/cache"
	"github.com/shopdirect/shopdirect-manager/internal/dto"
	"github.com/shopdirect/shopdirect-manager/internal/mutation"
	"github.com/shopdirect/shopdirect-manager/internal/query"
	"github.com/shopdirect/shopdirect-manager/internal/shopapi"
)

func testServer(t *testing.T, upstream http.Handler) *Server {
	t.Helper()
	fake := httptest.NewServer(upstream)
	t.Cleanup(fake.Close)

	api := shopapi.New(shopapi.Config{BaseURL: fake.URL, Timeout: 5 * time.Second})
	q := query.New(api, cache.New(), query.Config{RetryDelay: time.Millisecond})

	s := New(&Config{Port: "0", AllowedOrigins: []string{"*"}})
	s.api = api
	s.q = q
	s.analytics = analytics.NewService(q, analytics.New(analytics.Config{}), nil)
	s.mutations = mutation.NewCoordinator(api, q, nil, nil)
	return s
}

func upstreamCollections(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products":
			w.Write([]byte(`{"status":"success","total":1,"results":1,"data":{"products":[{"_id":"p1","name":"Lamp","price":50}]}}`))
		case "/orders":
			w.Write([]byte(`{"status":"success","data":{"orders":[{"_id":"o1","totalPrice":120,"createdAt":"2026-06-01T00:00:00Z"}]}}`))
		case "/users":
			w.Write([]byte(`{"status":"success","data":{"users":[{"_id":"u1","name":"Ada"}]}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"status":"fail","message":"not found"}`))
		}
	})
}

func TestHealth(t *testing.T) {
	s := testServer(t, upstreamCollections(t))

	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetDashboard(t *testing.T) {
	s := testServer(t, upstreamCollections(t))

	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var payload dto.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 1, payload.Stats.TotalOrders)
	assert.Equal(t, 1, payload.Stats.TotalProducts)
	assert.Len(t, payload.SalesData, 12)
}

func TestUpstreamErrorMapping(t *testing.T) {
	cases := []struct {
		name           string
		upstreamStatus int
		upstreamBody   string
		wantStatus     int
	}{
		{"not found", http.StatusNotFound, `{"status":"fail","message":"No product found with that ID"}`, http.StatusNotFound},
		{"validation", http.StatusBadRequest, `{"status":"fail","message":"Invalid id"}`, http.StatusBadRequest},
		{"server fault", http.StatusInternalServerError, `{"status":"error","message":"boom"}`, http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := testServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.upstreamStatus)
				w.Write([]byte(tc.upstreamBody))
			}))

			rec := httptest.NewRecorder()
			s.router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/p1", nil))
			assert.Equal(t, tc.wantStatus, rec.Code)

			var body errResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "error", body.Status)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestGetOrders(t *testing.T) {
	s := testServer(t, upstreamCollections(t))

	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"o1"`)
}
