// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"finance-predictor/internal/config"
	"finance-predictor/internal/contracts"
	"finance-predictor/internal/cqrs"
	"finance-predictor/internal/database"
	"finance-predictor/internal/handlers"
	"finance-predictor/internal/logging"
	"finance-predictor/internal/metrics"
	"finance-predictor/internal/middleware"
	"finance-predictor/internal/prediction"
	"finance-predictor/internal/repository"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	ctx = logging.WithContext(ctx, logrus.NewEntry(log))

	repos, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.SeedFile != "" {
		seed, err := config.LoadSeedFromPath(cfg.SeedFile)
		if err != nil {
			return err
		}
		if _, err := handlers.ApplySeed(ctx, repos, seed); err != nil {
			return err
		}
	}

	market := prediction.NewPolygonClient(cfg.PolygonBaseURL, cfg.PolygonAPIKey, cfg.PolygonRatePerMinute, nil)
	h := handlers.New(repos, market, prediction.NewTickerProvider(cfg.TickersFile))

	m := cqrs.NewMediator(cqrs.WithLogger(log), cqrs.WithDispatchCounter(metrics.DispatchTotal))
	if err := h.Register(m); err != nil {
		return err
	}
	m.Freeze()

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Close()

	router, err := newRouter(m, limiter, cfg.AllowedOrigins(), log)
	if err != nil {
		return err
	}

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":  cfg.HTTPAddr,
			"store": cfg.StoreDriver,
		}).Info("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Repositories, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		return repository.NewMemoryStore().Repositories(), func() {}, nil
	}

	db, err := database.New(ctx, cfg.DatabasePath)
	if err != nil {
		return repository.Repositories{}, nil, err
	}
	return repository.NewSQLRepositories(db), func() { db.Close() }, nil
}

func newRouter(m *cqrs.Mediator, limiter *middleware.RateLimiter, origins []string, log *logrus.Logger) (http.Handler, error) {
	endpoints := cqrs.NewEndpoints()
	contracts.Register(endpoints)

	r := mux.NewRouter()
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.Handle("/api/transactions/import", handlers.NewImportHandler(m)).Methods(http.MethodPost)
	if err := endpoints.Mount(r, m); err != nil {
		return nil, err
	}
	r.Use(metrics.InstrumentHandler)

	var handler http.Handler = r
	handler = limiter.Handler(handler)
	handler = middleware.CORS(origins)(handler)
	handler = middleware.Recover(handler)
	handler = middleware.RequestLogger(log)(handler)
	return handler, nil
}
