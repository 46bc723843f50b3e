// Command konditiond runs the konditional feature-flag evaluation service:
// an HTTP API server plus a metrics endpoint, backed by an in-memory or
// Postgres-durable snapshot store. Startup flow mirrors the reference
// service's two-listener shape: load config, wire the store and notifier,
// bring up the API listener, bring up a separate metrics listener, then
// wait for SIGINT/SIGTERM to drain and shut both down.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/konditional/konditional/internal/cliutil"
	"github.com/konditional/konditional/internal/codec"
	"github.com/konditional/konditional/internal/feature"
	"github.com/konditional/konditional/internal/httpapi"
	"github.com/konditional/konditional/internal/hooks"
	"github.com/konditional/konditional/internal/loader"
	"github.com/konditional/konditional/internal/metricsprom"
	"github.com/konditional/konditional/internal/notifier"
	"github.com/konditional/konditional/internal/registry"
	"github.com/konditional/konditional/internal/serviceconfig"
	"github.com/konditional/konditional/internal/snapshotstore"
)

func main() {
	cfg, err := serviceconfig.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	store, err := snapshotstore.NewStore(ctx, cfg.StoreType, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to initialize snapshot store (type=%s): %v", cfg.StoreType, err)
	}
	defer store.Close()

	collector := metricsprom.New()
	if err := collector.Register(prometheus.DefaultRegisterer); err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}

	resolver := feature.NewResolver()
	ns := registry.New(cfg.Namespace, registry.DefaultHistoryCapacity)
	ns.SetHooks(hooks.Hooks{Logger: stdLogger{}, Metrics: collector})

	if cfg.SnapshotPath != "" {
		data, err := os.ReadFile(cfg.SnapshotPath)
		if err != nil {
			log.Fatalf("failed to read initial snapshot %s: %v", cfg.SnapshotPath, err)
		}
		discovered, err := cliutil.DiscoverResolver(data)
		if err != nil {
			log.Fatalf("failed to discover features from %s: %v", cfg.SnapshotPath, err)
		}
		resolver = discovered
		summary, err := loader.Load(ns, data, resolver, codec.Options{})
		if err != nil {
			log.Fatalf("failed to load initial snapshot: %v", err)
		}
		log.Printf("[konditiond] initial snapshot loaded: namespace=%s features=%d", summary.Namespace, summary.FeatureCount)
	}

	var notify *notifier.Notifier
	if cfg.WebhookURL != "" {
		sink := httpapi.NewWebhookSink(cfg.WebhookURL, cfg.WebhookSecret, 3, 10*time.Second)
		notify = notifier.New([]notifier.Sink{sink})
		defer notify.Close()
	}

	adminHash := ""
	if cfg.AdminAPIKey != "" {
		adminHash, err = httpapi.HashAdminKey(cfg.AdminAPIKey)
		if err != nil {
			log.Fatalf("failed to hash admin key: %v", err)
		}
	}

	srv := httpapi.New(ns, resolver, adminHash, store, notify)

	apiSrv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Printf("[konditiond] api listening on %s", cfg.HTTPAddr)
		if err := apiSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("api server: %v", err)
		}
	}()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:         cfg.MetricsAddr,
		Handler:      metricsMux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Printf("[konditiond] metrics listening on %s", cfg.MetricsAddr)
		if err := metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics server: %v", err)
		}
	}()

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownSignal

	log.Println("[konditiond] shutdown signal received, draining...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[konditiond] api shutdown error: %v", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[konditiond] metrics shutdown error: %v", err)
	}
	log.Println("[konditiond] stopped")
}

type stdLogger struct{}

func (stdLogger) Warn(msg string, cause error) {
	if cause != nil {
		log.Printf("[konditiond] warning: %s: %v", msg, cause)
		return
	}
	log.Printf("[konditiond] warning: %s", msg)
}
