package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/pixelwick/internal/catalog"
	"github.com/fjod/pixelwick/internal/config"
	"github.com/fjod/pixelwick/internal/events"
	h "github.com/fjod/pixelwick/internal/http"
	"github.com/fjod/pixelwick/internal/idgen"
	"github.com/fjod/pixelwick/internal/logger"
	"github.com/fjod/pixelwick/internal/metrics"
	"github.com/fjod/pixelwick/internal/repository"
	"github.com/fjod/pixelwick/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	app, err := setup(context.Background(), cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start storefront")
	}
	defer app.close()

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      app.api,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("store", cfg.Store.Driver).Msg("storefront starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	app.api.Wait()

	log.Info().Msg("server exited")
}

type app struct {
	api       *h.API
	store     store.RecordStore
	publisher events.Publisher
	log       zerolog.Logger
}

func (a *app) close() {
	if err := a.publisher.Close(); err != nil {
		a.log.Error().Err(err).Msg("failed to close event publisher")
	}
	if err := a.store.Close(); err != nil {
		a.log.Error().Err(err).Msg("failed to close store")
	}
}

// setup opens the store, seeds the catalog and builds the API.
func setup(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	s, err := store.Open(cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := s.Initialize(ctx, store.Tables()...); err != nil {
		s.Close()
		return nil, fmt.Errorf("initialize store: %w", err)
	}

	logReport := repository.LogReporter(log)
	report := func(table store.Table, op string, err error) {
		logReport(table, op, err)
		m.StoreError(table, op)
	}
	products := repository.NewProductRepository(s, report)

	if cfg.SeedCatalog {
		if err := seed(ctx, products, cfg.CatalogFile, log); err != nil {
			s.Close()
			return nil, err
		}
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaTopic, cfg.KafkaBrokers...)
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing events to kafka")
	}

	api := h.New(h.Deps{
		Products:           products,
		Orders:             repository.NewOrderRepository(s, report),
		Contacts:           repository.NewContactRepository(s, report),
		IDs:                idgen.New(),
		Events:             publisher,
		Metrics:            m,
		Logger:             log,
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	return &app{api: api, store: s, publisher: publisher, log: log}, nil
}

func seed(ctx context.Context, products *repository.ProductRepository, file string, log zerolog.Logger) error {
	c := catalog.Default()
	if file != "" {
		var err error
		if c, err = catalog.LoadFile(file); err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
	}

	seeded, err := products.Seed(ctx, c.Products())
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	if seeded {
		log.Info().Int("products", c.Len()).Msg("seeded product catalog")
	}
	return nil
}
