// Package api is the client-facing HTTP surface: the chat turn endpoint,
// the raw model proxy, invoice actions, and the tracking pixel.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/byggassist/backend/invoice"
	"github.com/byggassist/backend/model"
	"github.com/byggassist/backend/store"
)

type ServerOptions struct {
	Port            int
	ModelBackendURL string
	ModelAPIKey     string
	Metrics         *prometheus.Registry
}

type Server struct {
	router chi.Router
	server *http.Server
	port   int

	store    *store.Store
	gateway  *model.Gateway
	invoices *invoice.Manager

	modelBackendURL string
	modelAPIKey     string
	proxyClient     *http.Client

	trackingHits  prometheus.Counter
	proxyFailures prometheus.Counter
}

func NewServer(st *store.Store, gateway *model.Gateway, invoices *invoice.Manager, opts ServerOptions) *Server {
	metrics := opts.Metrics
	if metrics == nil {
		metrics = prometheus.NewRegistry()
	}

	s := &Server{
		port:            opts.Port,
		store:           st,
		gateway:         gateway,
		invoices:        invoices,
		modelBackendURL: opts.ModelBackendURL,
		modelAPIKey:     opts.ModelAPIKey,
		// No client timeout: generation responses stream for as long as
		// the backend keeps producing. Cancellation rides the request
		// context instead.
		proxyClient: &http.Client{},
		trackingHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracking_hits_total",
			Help: "Invoice tracking pixel requests.",
		}),
		proxyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "model_proxy_failures_total",
			Help: "Model proxy requests that failed to reach the backend.",
		}),
	}
	metrics.MustRegister(s.trackingHits, s.proxyFailures)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.withIdentity)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics, promhttp.HandlerOpts{}))

	r.Get("/track", s.handleTrack)

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", requireAuth(s.handleChat))
		r.HandleFunc("/model/*", s.handleModelProxy)
		r.Route("/invoices", func(r chi.Router) {
			r.Post("/draft", requireAuth(s.handleInvoiceDraft))
			r.Post("/finalize", requireAuth(s.handleInvoiceFinalize))
			r.Post("/{id}/send", requireAuth(s.handleInvoiceSend))
		})
	})

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) ListenAndServe() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}
