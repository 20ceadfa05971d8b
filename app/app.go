package app

import (
	"context"
	"log/slog"

	"github.com/shopdirect/shopdirect-manager/config"
	"github.com/shopdirect/shopdirect-manager/internal/analytics"
	httpapi "github.com/shopdirect/shopdirect-manager/internal/api/http"
	"github.com/shopdirect/shopdirect-manager/internal/cache"
	"github.com/shopdirect/shopdirect-manager/internal/mutation"
	"github.com/shopdirect/shopdirect-manager/internal/query"
	"github.com/shopdirect/shopdirect-manager/internal/shopapi"
)

// App is the main application
type App struct {
	hs   *httpapi.Server
	c    *config.Config
	done chan struct{}
}

// New returns a new instance of App
func New(c *config.Config) *App {
	return &App{
		c:    c,
		done: make(chan struct{}),
	}
}

// Start starts the app
func (a *App) Start(ctx context.Context) error {
	slog.Default().InfoContext(ctx, "starting shopdirect manager")

	api := shopapi.New(a.c.ShopAPI)
	store := cache.New()
	q := query.New(api, store, a.c.Query)

	agg := analytics.New(a.c.Analytics)
	analyticsS := analytics.NewService(q, agg, slog.Default())

	mutations := mutation.NewCoordinator(api, q, logNotifier{}, slog.Default())

	a.hs = httpapi.New(&a.c.HTTP)
	if err := a.hs.Start(ctx, api, q, analyticsS, mutations); err != nil {
		slog.Default().ErrorContext(ctx, "cannot start http server", slog.String("err", err.Error()))
		return err
	}

	go func() {
		<-a.hs.Done()
		close(a.done)
	}()

	return nil
}

// Stop stops the application and waits for all services to exit
func (a *App) Stop(ctx context.Context) {
	a.hs.Stop(ctx)
}

// Done returns a channel that is closed after the application has exited
func (a *App) Done() <-chan struct{} {
	return a.done
}

// logNotifier surfaces mutation outcomes into the service log. The
// frontend toast catalog maps onto structured records here.
type logNotifier struct{}

func (logNotifier) Success(title, message string) {
	slog.Default().Info("mutation succeeded", slog.String("title", title), slog.String("message", message))
}

func (logNotifier) Error(title, message string) {
	slog.Default().Error("mutation failed", slog.String("title", title), slog.String("message", message))
}
