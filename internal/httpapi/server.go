// Package httpapi is the reference HTTP transport: chi-routed handlers
// implementing the wire contract over a single NamespaceRegistry. It never
// mutates core invariants beyond calling the public registry/loader API —
// all decoding, patching, and evaluation logic lives in internal/codec,
// internal/loader, and internal/registry.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/konditional/konditional/internal/codec"
	"github.com/konditional/konditional/internal/feature"
	"github.com/konditional/konditional/internal/notifier"
	"github.com/konditional/konditional/internal/registry"
	"github.com/konditional/konditional/internal/snapshotstore"
)

// Server serves the reference HTTP transport for a single namespace.
type Server struct {
	namespace    *registry.Namespace
	resolver     *feature.Resolver
	adminKeyHash string
	store        snapshotstore.SnapshotStore // optional, may be nil
	notify       *notifier.Notifier          // optional, may be nil
	codecOpts    codec.Options
}

// New builds a Server for namespace, authenticating admin-only routes
// against adminKeyHash (produced by HashAdminKey). store and notify may be
// nil, in which case persistence and change notification are skipped.
func New(namespace *registry.Namespace, resolver *feature.Resolver, adminKeyHash string, store snapshotstore.SnapshotStore, notify *notifier.Notifier) *Server {
	return &Server{
		namespace:    namespace,
		resolver:     resolver,
		adminKeyHash: adminKeyHash,
		store:        store,
		notify:       notify,
	}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "If-None-Match"},
		ExposedHeaders:   []string{"ETag"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(5 * time.Second))
		r.Use(httprate.LimitByIP(300, time.Minute))
		r.Get("/v1/evaluate/{feature}", s.handleEvaluate)
		r.Get("/v1/snapshot", s.handleSnapshot)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(5 * time.Second))
		r.Use(httprate.LimitByIP(60, time.Minute))
		r.With(s.requireAdmin).Post("/v1/snapshots", s.handleLoadSnapshot)
		r.With(s.requireAdmin).Post("/v1/snapshots/patch", s.handleLoadPatch)
		r.With(s.requireAdmin).Post("/v1/rollback", s.handleRollback)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
