package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/shopdirect/shopdirect-manager/internal/analytics"
	"github.com/shopdirect/shopdirect-manager/internal/mutation"
	"github.com/shopdirect/shopdirect-manager/internal/query"
	"github.com/shopdirect/shopdirect-manager/internal/shopapi"
)

// Config is the configuration for the http server
type Config struct {
	Port           string   `mapstructure:"port"`
	Address        string   `mapstructure:"address"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Server is the http server
type Server struct {
	hs   *http.Server
	c    *Config
	done chan struct{}

	api       *shopapi.Client
	q         *query.Querier
	analytics *analytics.Service
	mutations *mutation.Coordinator
}

// New creates a new server
func New(config *Config) *Server {
	return &Server{
		c:    config,
		done: make(chan struct{}),
	}
}

// Done returns a channel that is closed when the http server exits
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Start wires the handlers and begins serving. It returns once the
// listener is up; serve errors close Done.
func (s *Server) Start(ctx context.Context, api *shopapi.Client, q *query.Querier, an *analytics.Service, mc *mutation.Coordinator) error {
	s.api = api
	s.q = q
	s.analytics = an
	s.mutations = mc

	addr := fmt.Sprintf("%s:%s", s.c.Address, s.c.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("cannot listen on %s: %w", addr, err)
	}

	s.hs = &http.Server{
		Addr:              addr,
		Handler:           s.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		defer close(s.done)
		if err := s.hs.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Default().ErrorContext(ctx, "http server exited", slog.String("err", err.Error()))
		}
	}()

	slog.Default().InfoContext(ctx, "http server listening", slog.String("addr", addr))
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) {
	if s.hs == nil {
		return
	}
	sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.hs.Shutdown(sctx); err != nil {
		slog.Default().ErrorContext(ctx, "http server shutdown", slog.String("err", err.Error()))
	}
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()

	c := cors.New(cors.Options{
		AllowedOrigins: s.c.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodOptions,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	})

	r.Use(c.Handler)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
		})
		r.Get("/dashboard", s.getDashboard)
		r.Get("/analytics", s.getAnalytics)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.getProducts)
			r.Post("/", s.createProduct)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getProduct)
				r.Get("/insights", s.getProductInsights)
				r.Patch("/", s.updateProduct)
				r.Delete("/", s.deleteProduct)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", s.getOrders)
			r.Get("/{id}", s.getOrder)
			r.Patch("/{id}/deliver", s.deliverOrder)
		})

		r.Get("/customers", s.getCustomers)
		r.Get("/customers/{id}", s.getCustomer)
		r.Get("/categories", s.getCategories)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.login)
			r.Post("/signup", s.signup)
			r.Get("/me", s.getMe)
			r.Patch("/me", s.updateMe)
			r.Patch("/password", s.updatePassword)
		})
	})

	return r
}
