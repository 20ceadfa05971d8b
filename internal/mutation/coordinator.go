package mutation

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/shopdirect/shopdirect-manager/internal/cache"
	"github.com/shopdirect/shopdirect-manager/internal/query"
	"github.com/shopdirect/shopdirect-manager/internal/shopapi"
)

// State is the lifecycle of a single mutation.
type State string

const (
	StateIdle       State = "idle"
	StatePending    State = "pending"
	StateCommitted  State = "committed"
	StateRolledBack State = "rolled_back"
	StateSettled    State = "settled"
)

// Notifier receives the user-facing outcome of a mutation.
type Notifier interface {
	Success(title, message string)
	Error(title, message string)
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) Success(string, string) {}
func (NopNotifier) Error(string, string)   {}

// Coordinator wraps upstream mutations with an optimistic cache write,
// a rollback path on failure and a reconciling refetch on settle.
//
// A second mutation starting before the first settles snapshots the
// optimistic state, not the original: rolling the second back restores
// the first's optimistic value. Accepted limitation for a
// low-write-contention admin tool; concurrent edits to one entity are
// not merged.
type Coordinator struct {
	api       *shopapi.Client
	q         *query.Querier
	cache     *cache.Store
	validate  *validator.Validate
	notify    Notifier
	logger    *slog.Logger
	reconcile func(ctx context.Context, keys []cache.Key)
	now       func() time.Time
	newID     func() string
}

// Option tweaks coordinator construction.
type Option func(*Coordinator)

// WithNow overrides the clock, for testing.
func WithNow(fn func() time.Time) Option {
	return func(c *Coordinator) {
		if fn != nil {
			c.now = fn
		}
	}
}

// WithTempID overrides temporary id generation, for testing.
func WithTempID(fn func() string) Option {
	return func(c *Coordinator) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// WithReconciler replaces the background settle refetch, for testing.
func WithReconciler(fn func(ctx context.Context, keys []cache.Key)) Option {
	return func(c *Coordinator) {
		if fn != nil {
			c.reconcile = fn
		}
	}
}

// NewCoordinator builds a coordinator over the given read path.
func NewCoordinator(api *shopapi.Client, q *query.Querier, notify Notifier, logger *slog.Logger, opts ...Option) *Coordinator {
	if notify == nil {
		notify = NopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Coordinator{
		api:      api,
		q:        q,
		cache:    q.Cache(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		notify:   notify,
		logger:   logger,
		now:      time.Now,
		newID: func() string {
			return "temp-" + uuid.NewString()
		},
	}
	c.reconcile = c.backgroundRefetch
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mutation is the explicit begin artifact: the pre-mutation snapshot
// and the affected keys, threaded through to commit or rollback instead
// of living in callback captures.
type Mutation struct {
	state    State
	snapshot cache.Snapshot
	keys     []cache.Key
}

// State reports where the mutation is in its lifecycle.
func (m *Mutation) State() State {
	return m.state
}

// begin cancels in-flight refetches for the affected keys, so a stale
// response cannot land on top of the optimistic write, and snapshots
// their current state. The caller applies the optimistic write right
// after.
func (c *Coordinator) begin(keys ...cache.Key) *Mutation {
	c.cache.CancelInflight(keys...)
	return &Mutation{
		state:    StatePending,
		snapshot: c.cache.Snapshot(keys...),
		keys:     keys,
	}
}

func (m *Mutation) commit() {
	m.state = StateCommitted
}

func (m *Mutation) rollback() {
	m.snapshot.Restore()
	m.state = StateRolledBack
}

// settle is the correctness backstop: whichever way the mutation went,
// the affected collections get a reconciling refetch to correct any
// divergence the optimistic or rollback path missed.
func (c *Coordinator) settle(ctx context.Context, m *Mutation) {
	m.state = StateSettled
	c.reconcile(ctx, m.keys)
}

func (c *Coordinator) backgroundRefetch(ctx context.Context, keys []cache.Key) {
	bg := context.WithoutCancel(ctx)
	for _, key := range keys {
		if key.ID != "" {
			continue
		}
		switch key.Collection {
		case cache.Products:
			go func() {
				if _, err := c.q.RefetchProducts(bg); err != nil {
					c.logger.Error("reconciling products refetch failed", slog.String("err", err.Error()))
				}
			}()
		case cache.Orders:
			go func() {
				if _, err := c.q.RefetchOrders(bg); err != nil {
					c.logger.Error("reconciling orders refetch failed", slog.String("err", err.Error()))
				}
			}()
		}
	}
}

func (c *Coordinator) notifyOutcome(entityName, op string, err error) {
	if err == nil {
		notice := successNotice(entityName, op)
		c.notify.Success(notice.Title, notice.Message)
		return
	}
	notice := errorNotice(entityName, op, shopapi.MessageOf(err))
	c.notify.Error(notice.Title, notice.Message)
}
