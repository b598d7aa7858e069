// Package api implements app.Runner for the sync server process.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apphttp "github.com/taployalty/lightspeed-sync/pkg/app/http"
	"github.com/taployalty/lightspeed-sync/pkg/auth"
	"github.com/taployalty/lightspeed-sync/pkg/config"
	"github.com/taployalty/lightspeed-sync/pkg/credstore"
	"github.com/taployalty/lightspeed-sync/pkg/lightspeed"
	"github.com/taployalty/lightspeed-sync/pkg/pgutil"
	"github.com/taployalty/lightspeed-sync/pkg/salestore"
	syncservice "github.com/taployalty/lightspeed-sync/pkg/sync"
)

const defaultRequestTimeout = 60

// Server holds cfg to init the sync server.
type Server struct {
	cfg *config.Config
}

// NewServer initializes new sync server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("sync server config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting sync server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	db, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() { _ = db.Close() }()

	logger.Info("Connected to database",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database),
	)

	cipher, err := credstore.NewCipherFromBase64(cfg.Credentials.MasterKey)
	if err != nil {
		return fmt.Errorf("invalid credentials master key: %w", err)
	}

	credStore := credstore.NewStore(db, cipher)
	saleStore := salestore.NewStore(db)

	httpClient := &http.Client{Timeout: cfg.Lightspeed.RequestTimeout}
	client := lightspeed.NewClient(cfg.Lightspeed.BaseURL, httpClient)
	refresher := lightspeed.NewTokenRefresher(
		cfg.Lightspeed.TokenURL,
		cfg.Lightspeed.ClientID,
		cfg.Lightspeed.ClientSecret,
		httpClient,
		credStore,
	)

	itemCache := syncservice.NewItemCache(cfg.ItemCache.MaxEntries, cfg.ItemCache.TTL)
	enricher := syncservice.NewEnricher(
		client,
		itemCache,
		cfg.Lightspeed.ItemLookupConcurrency,
		cfg.Lightspeed.CustomerBatchSize,
		logger,
	)

	writer := syncservice.NewWriter(saleStore, logger)
	aggregator := syncservice.NewAggregator(saleStore, logger)
	supervisor := syncservice.NewSupervisor(logger)

	orchestrator := syncservice.NewOrchestrator(
		client,
		refresher,
		credStore,
		enricher,
		writer,
		aggregator,
		supervisor,
		cfg.Lightspeed.PageSize,
		cfg.Lightspeed.MaxPages,
		logger,
	)

	router := s.setupRouter(syncservice.NewLog(orchestrator, logger), logger)

	err = apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)

	// Drain background persistence before the deferred DB close kicks in.
	logger.Info("Waiting for background tasks to finish")
	supervisor.Wait()

	return err
}

func (s *Server) setupRouter(service syncservice.Service, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Second * defaultRequestTimeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if s.cfg.Auth.Enabled {
			validator := auth.NewJWTValidator(s.cfg.Auth.JWKSURL, s.cfg.Auth.Issuer)
			r.Use(auth.Middleware(validator))
			logger.Info("JWT validation enabled", zap.String("jwks_url", s.cfg.Auth.JWKSURL))
		}

		syncservice.RegisterRoutes(r, service, logger)
	})

	return r
}
