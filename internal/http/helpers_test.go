package http

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fjod/pixelwick/internal/catalog"
	"github.com/fjod/pixelwick/internal/domain"
	"github.com/fjod/pixelwick/internal/events"
	"github.com/fjod/pixelwick/internal/metrics"
	"github.com/fjod/pixelwick/internal/repository"
	"github.com/fjod/pixelwick/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 14, 12, 0, 0, 123456789, time.UTC)

type seqIDs struct {
	n atomic.Int64
}

func (s *seqIDs) Next() int64 {
	return 1000 + s.n.Add(1)
}

type publisherMock struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *publisherMock) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *publisherMock) Close() error { return nil }

func (p *publisherMock) published() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

type fixture struct {
	store     *store.FileStore
	products  *repository.ProductRepository
	orders    *repository.OrderRepository
	contacts  *repository.ContactRepository
	publisher *publisherMock
	metrics   *metrics.Metrics
	api       *API
}

// setupAPI serves the seeded catalog from a file store in a temp dir.
// modify can swap dependencies before the router is built.
func setupAPI(t *testing.T, modify ...func(*Deps)) *fixture {
	t.Helper()

	s := store.NewFileStore(t.TempDir())
	require.NoError(t, s.Initialize(context.Background(), store.Tables()...))

	f := &fixture{
		store:     s,
		products:  repository.NewProductRepository(s, nil),
		orders:    repository.NewOrderRepository(s, nil),
		contacts:  repository.NewContactRepository(s, nil),
		publisher: &publisherMock{},
		metrics:   metrics.New(prometheus.NewRegistry()),
	}
	_, err := f.products.Seed(context.Background(), catalog.Default().Products())
	require.NoError(t, err)

	d := Deps{
		Products: f.products,
		Orders:   f.orders,
		Contacts: f.contacts,
		IDs:      &seqIDs{},
		Events:   f.publisher,
		Metrics:  f.metrics,
		Logger:   zerolog.Nop(),
		Now:      func() time.Time { return fixedNow },
	}
	for _, m := range modify {
		m(&d)
	}
	f.api = New(d)
	return f
}

var errStoreDown = errors.New("store down")

type failingOrders struct{}

func (failingOrders) Create(context.Context, domain.Order) error { return errStoreDown }
func (failingOrders) List(context.Context) []domain.Order        { return []domain.Order{} }

type failingContacts struct{}

func (failingContacts) Create(context.Context, domain.ContactSubmission) error { return errStoreDown }

type failingProducts struct{}

func (failingProducts) List(context.Context) []domain.Product { return []domain.Product{} }
func (failingProducts) Get(context.Context, int64) (domain.Product, error) {
	return domain.Product{}, errStoreDown
}
