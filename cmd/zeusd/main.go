package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fadedpez/zeuscoins/internal/config"
	"github.com/fadedpez/zeuscoins/internal/logging"
	"github.com/fadedpez/zeuscoins/internal/policy"
	coinRepo "github.com/fadedpez/zeuscoins/pkg/repositories/coin"
	"github.com/fadedpez/zeuscoins/pkg/repositories/report"
	"github.com/fadedpez/zeuscoins/pkg/scheduler"
	"github.com/fadedpez/zeuscoins/pkg/server"
	"github.com/fadedpez/zeuscoins/pkg/services/coins"
	"github.com/fadedpez/zeuscoins/pkg/services/redeem"
	"github.com/fadedpez/zeuscoins/pkg/services/spin"
	"github.com/fadedpez/zeuscoins/pkg/services/staff"
	"github.com/fadedpez/zeuscoins/pkg/services/tiers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Default.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(logging.INFO)
	if cfg.IsDevelopment() {
		logger = logging.NewLogger(logging.DEBUG)
	}

	// Economy policy tables: wheel, tiers, catalog
	pol, err := policy.Load(cfg.PolicyPath)
	if err != nil {
		logger.Error("Failed to load policy: %v", err)
		os.Exit(1)
	}
	if cfg.PolicyPath != "" {
		logger.Info("Loaded policy overrides from %s", cfg.PolicyPath)
	}

	classifier, err := tiers.NewClassifier(pol.Tiers)
	if err != nil {
		logger.Error("Invalid tier table: %v", err)
		os.Exit(1)
	}

	repo := openRepository(cfg, logger)
	defer repo.Close()

	// Optional Elasticsearch reporting sink
	var reporter report.Reporter = report.NewNopReporter()
	if cfg.ElasticURL != "" {
		esConfig := report.DefaultElasticsearchConfig()
		esConfig.URL = cfg.ElasticURL
		esConfig.Username = cfg.ElasticUsername
		esConfig.Password = cfg.ElasticPassword
		esReporter, err := report.NewElasticsearchReporter(esConfig)
		if err != nil {
			logger.Warn("Failed to initialize Elasticsearch reporter, continuing without analytics: %v", err)
		} else {
			reporter = esReporter
			logger.Info("Elasticsearch reporting enabled at %s", cfg.ElasticURL)
		}
	}
	defer reporter.Close()

	coinService := coins.NewService(repo, classifier, logger)
	spinService := spin.NewService(repo, coinService, classifier, pol, logger)
	redeemService := redeem.NewService(repo, coinService, pol, reporter, logger)
	authorizer := staff.NewStaticAuthorizer(cfg.HostOperators)
	staffService := staff.NewService(repo, coinService, authorizer, logger)

	// Periodic ledger/balance reconciliation
	reconciler := scheduler.NewReconciler(repo, reporter, logger)
	sched := scheduler.NewScheduler(logger)
	sched.AddTask("reconcile", cfg.ReconcileInterval, reconciler.Run)
	sched.Start(context.Background())
	defer sched.Stop()

	srv := server.NewServer(coinService, spinService, redeemService, staffService, classifier, logger)
	if cfg.MetricsEnabled {
		srv.EnableMetrics()
	}

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("Zeus Coins listening on %s (storage: %s)", cfg.ListenAddr, cfg.StorageType)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Error during shutdown: %v", err)
	}
}

// openRepository selects the storage backend, falling back to memory when
// a durable backend cannot be opened.
func openRepository(cfg *config.Config, logger *logging.Logger) coinRepo.Repository {
	switch cfg.StorageType {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
			logger.Error("Failed to create data directory: %v", err)
			logger.Warn("Falling back to in-memory storage")
			return coinRepo.NewMemoryRepository()
		}
		repo, err := coinRepo.NewSQLiteRepository(cfg.SQLitePath)
		if err != nil {
			logger.Error("Failed to initialize SQLite storage: %v", err)
			logger.Warn("Falling back to in-memory storage")
			return coinRepo.NewMemoryRepository()
		}
		logger.Info("Using SQLite storage at %s", cfg.SQLitePath)
		return repo
	case "postgres":
		repo, err := coinRepo.NewPostgresRepository(cfg.PostgresDSN)
		if err != nil {
			logger.Error("Failed to initialize Postgres storage: %v", err)
			logger.Warn("Falling back to in-memory storage")
			return coinRepo.NewMemoryRepository()
		}
		logger.Info("Using Postgres storage")
		return repo
	default:
		logger.Warn("Using in-memory storage (data will be lost on restart)")
		return coinRepo.NewMemoryRepository()
	}
}
