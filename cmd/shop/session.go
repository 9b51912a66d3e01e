package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fjod/pixelwick/internal/apiclient"
	"github.com/fjod/pixelwick/internal/cart"
	"github.com/fjod/pixelwick/internal/catalog"
	"github.com/fjod/pixelwick/internal/clientstore"
	"github.com/fjod/pixelwick/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// session is what every subcommand works with.
type session struct {
	out     io.Writer
	api     *apiclient.Client
	storage cart.Storage
	catalog *lazyCatalog
	log     zerolog.Logger
	closers []func() error
}

func newSession(ctx context.Context, args *CLI, out io.Writer, log zerolog.Logger) (*session, error) {
	s := &session{
		out: out,
		api: apiclient.New(args.API),
		log: log,
	}
	s.catalog = &lazyCatalog{fetch: func() ([]domain.Product, error) {
		return s.api.ListProducts(ctx)
	}}

	switch args.Storage {
	case "memory":
		s.storage = clientstore.NewMemory()
	case "file":
		path := args.StoragePath
		if path == "" {
			var err error
			if path, err = clientstore.DefaultPath(); err != nil {
				return nil, err
			}
		}
		s.storage = clientstore.NewFile(path, clientstore.WithLogger(log))
		log.Debug().Str("path", path).Msg("using file storage")
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: args.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", args.RedisAddr, err)
		}
		s.storage = clientstore.NewRedis(client, args.Session)
		s.closers = append(s.closers, client.Close)
	default:
		return nil, fmt.Errorf("unknown storage %q, want file, redis or memory", args.Storage)
	}
	return s, nil
}

func (s *session) close() {
	for _, c := range s.closers {
		if err := c(); err != nil {
			s.log.Warn().Err(err).Msg("close")
		}
	}
}

// cart loads the saved cart. Notifications are printed as they happen.
func (s *session) cart(ctx context.Context) *cart.Cart {
	return cart.Load(ctx, s.storage, s.catalog,
		cart.WithOrderPlacer(s.api),
		cart.WithLogger(s.log),
		cart.WithObserver(func(e cart.Event) {
			if e.Message != "" {
				fmt.Fprintln(s.out, e.Message)
			}
		}),
	)
}

// lazyCatalog fetches the product list from the API the first time a
// product is looked up.
type lazyCatalog struct {
	fetch func() ([]domain.Product, error)

	once    sync.Once
	catalog *catalog.Catalog
	err     error
}

func (l *lazyCatalog) load() error {
	l.once.Do(func() {
		products, err := l.fetch()
		if err != nil {
			l.err = err
			return
		}
		l.catalog, l.err = catalog.New(products)
	})
	return l.err
}

func (l *lazyCatalog) Product(id int64) (domain.Product, bool) {
	if l.load() != nil {
		return domain.Product{}, false
	}
	return l.catalog.Product(id)
}
