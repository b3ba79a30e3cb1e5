package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"

	"github.com/byggassist/backend/api"
	"github.com/byggassist/backend/config"
	"github.com/byggassist/backend/docs"
	"github.com/byggassist/backend/geo"
	"github.com/byggassist/backend/invoice"
	"github.com/byggassist/backend/model"
	"github.com/byggassist/backend/store"
	"github.com/byggassist/backend/tool"
	"github.com/byggassist/backend/tool/business"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()
	st := store.New(db)

	var docsService docs.Service
	if cfg.DocsServiceURL != "" {
		docsService = docs.NewHTTPService(cfg.DocsServiceURL, cfg.DocsServiceToken)
	} else {
		slog.Info("no document service configured, storing documents on local disk",
			"dir", cfg.DocsLocalDir)
		docsService, err = docs.NewFSService(afero.NewOsFs(), cfg.DocsLocalDir)
		if err != nil {
			return err
		}
	}

	geocoder, err := geo.NewCachedGeocoder(geo.NewHTTPGeocoder(cfg.GeocoderURL))
	if err != nil {
		return err
	}

	metrics := prometheus.NewRegistry()

	registry := tool.NewRegistry()
	if err := registry.Register(business.Tools(&business.Services{
		Store:    st,
		Docs:     docsService,
		Geocoder: geocoder,
	})...); err != nil {
		return err
	}
	executor := tool.NewExecutor(registry, tool.WithMetrics(metrics))

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}
	gateway := model.NewGateway(provider, executor, registry,
		model.WithModelName(cfg.ModelName))

	invoices := invoice.NewManager(st, docsService)

	server := api.NewServer(st, gateway, invoices, api.ServerOptions{
		Port:            cfg.Port,
		ModelBackendURL: cfg.ModelBackendURL,
		ModelAPIKey:     cfg.ModelCredential(),
		Metrics:         metrics,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "port", cfg.Port)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildProvider selects the model backend. Without a credential the
// deterministic mock responder answers instead, so the whole stack stays
// usable offline.
func buildProvider(cfg *config.Config) (model.Provider, error) {
	credential := cfg.ModelCredential()
	if credential == "" {
		slog.Warn("no model credential configured, using mock responder",
			"provider", cfg.ModelProvider)
		return model.NewMockProvider(), nil
	}

	switch cfg.ModelProvider {
	case "openai":
		return model.NewOpenAIProvider(credential)
	default:
		return model.NewAnthropicProvider(credential)
	}
}
