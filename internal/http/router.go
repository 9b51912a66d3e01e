package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/fjod/pixelwick/internal/events"
	"github.com/fjod/pixelwick/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

type IDGenerator interface {
	Next() int64
}

// Recorder counts persisted records. *metrics.Metrics implements it.
type Recorder interface {
	OrderPlaced()
	ContactSubmitted()
}

type nopRecorder struct{}

func (nopRecorder) OrderPlaced()      {}
func (nopRecorder) ContactSubmitted() {}

type Deps struct {
	Products ProductReader
	Orders   OrderStore
	Contacts ContactWriter
	IDs      IDGenerator

	// Optional.
	Events  events.Publisher
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
	Now     func() time.Time

	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	CORSAllowedOrigins []string
}

// env is what handlers share besides their repository.
type env struct {
	ids            IDGenerator
	now            func() time.Time
	recorder       Recorder
	events         events.Publisher
	publishTimeout time.Duration
	wg             sync.WaitGroup
}

// timestamp is the current UTC time at millisecond precision.
func (e *env) timestamp() time.Time {
	return e.now().UTC().Truncate(time.Millisecond)
}

// publish hands the event to the publisher without holding up the response.
// Failures are only logged.
func (e *env) publish(r *http.Request, ev events.Event) {
	logger := hlog.FromRequest(r).With().Logger()
	ev.RequestID = getRequestID(r.Context())

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), e.publishTimeout)
		defer cancel()

		if err := e.events.Publish(ctx, ev); err != nil {
			logger.Warn().Err(err).Str("event_type", ev.Type).Int64("key", ev.Key).Msg("failed to publish event")
		}
	}()
}

type API struct {
	handler http.Handler
	env     *env
}

func New(d Deps) *API {
	e := &env{
		ids:            d.IDs,
		now:            d.Now,
		recorder:       nopRecorder{},
		events:         d.Events,
		publishTimeout: 5 * time.Second,
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.events == nil {
		e.events = events.NopPublisher{}
	}
	if d.Metrics != nil {
		e.recorder = d.Metrics
	}
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 30 * time.Second
	}
	if d.MaxRequestBodySize <= 0 {
		d.MaxRequestBodySize = 1 << 20 // 1MB
	}
	if len(d.CORSAllowedOrigins) == 0 {
		d.CORSAllowedOrigins = []string{"*"}
	}

	productHandler := NewProductHandler(d.Products)
	contactHandler := NewContactHandler(d.Contacts, e)
	ordersHandler := NewOrdersHandler(d.Orders, e)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(hlog.NewHandler(d.Logger))
	r.Use(RequestIDMiddleware)
	r.Use(accessLog())
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))
	r.Use(middleware.Timeout(d.RequestTimeout))
	r.Use(middleware.RequestSize(d.MaxRequestBodySize))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", productHandler.List)
		r.Get("/products/{id}", productHandler.Get)
		r.Post("/contact", contactHandler.Submit)
		r.Post("/orders", ordersHandler.PlaceOrder)
		r.Get("/orders", ordersHandler.ListOrders)
	})

	return &API{handler: r, env: e}
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// Wait blocks until every event publish started by a request has finished.
func (a *API) Wait() {
	a.env.wg.Wait()
}
