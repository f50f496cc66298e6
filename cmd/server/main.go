package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"aegis/internal/audit"
	"aegis/internal/platform/config"
	"aegis/internal/platform/health"
	"aegis/internal/platform/httpserver"
	"aegis/internal/platform/logger"
	"aegis/internal/platform/metrics"
	"aegis/internal/safety/classifier"
	"aegis/internal/safety/handler"
	"aegis/internal/safety/service"
	"aegis/internal/safety/store"
	"aegis/internal/safety/token"
	httptransport "aegis/internal/transport/http"
	"aegis/pkg/secrets"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing aegis",
		"addr", cfg.Addr,
		"data_dir", cfg.DataDir,
		"classifier_mode", cfg.ClassifierMode,
	)

	masterKey, err := secrets.LoadOrCreateMasterKey(filepath.Join(cfg.DataDir, cfg.KeyFile))
	if err != nil {
		log.Error("could not load encryption key", "error", err)
		os.Exit(1)
	}

	safetyStore, err := store.NewFileStore(cfg.DataDir, masterKey)
	if err != nil {
		log.Error("could not open safety store", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	auditor := audit.NewPublisher(audit.NewInMemoryStore(),
		audit.WithAsyncBuffer(cfg.AuditBufferSize),
		audit.WithPublisherLogger(log),
	)
	defer auditor.Close()

	opts := []service.Option{
		service.WithAuditor(auditor),
		service.WithMetrics(m),
		service.WithVerificationTTL(cfg.VerificationTTL),
		service.WithConsentTTL(cfg.ConsentTTL),
		service.WithActivityWindow(cfg.ActivityWindow),
		service.WithRefreshWindow(cfg.RefreshWindow),
		service.WithNSFWThreshold(cfg.NSFWThreshold),
	}
	if cfg.ClassifierURL != "" {
		opts = append(opts, service.WithClassifier(classifier.NewHTTP(classifier.HTTPConfig{
			BaseURL: cfg.ClassifierURL,
			APIKey:  cfg.ClassifierAPIKey,
			Timeout: cfg.ClassifierTimeout,
		})))
		log.Info("content classifier configured", "url", cfg.ClassifierURL)
	} else {
		log.Warn("no content classifier configured", "mode", cfg.ClassifierMode)
	}
	if cfg.ClassifierMode == config.ClassifierModeStrict {
		opts = append(opts, service.WithStrictContentMode())
	}

	issuer := token.NewIssuer(cfg.TokenSigning, cfg.TokenIssuer)
	safety, err := service.NewService(context.Background(), safetyStore, issuer, log, opts...)
	if err != nil {
		log.Error("could not initialize safety service", "error", err)
		os.Exit(1)
	}

	healthHandler := health.New(log, map[string]health.Check{
		"store": safety.StoreCheck,
	})
	safetyHandler := handler.New(safety, auditor, log, m)
	router := httptransport.NewRouter(safetyHandler, healthHandler, log, config.DefaultRequestTimeout)

	srv := httpserver.New(cfg.Addr, router)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := httpserver.New(cfg.MetricsAddr, metricsMux)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("starting metrics server", "addr", cfg.MetricsAddr)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.DefaultShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return metricsSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
