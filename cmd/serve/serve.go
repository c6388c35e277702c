// Package serve implements the serve command: catalog bootstrap followed by
// the HTTP listener.
package serve

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/dukkea/pokeapi-go/internal/api"
	"github.com/dukkea/pokeapi-go/internal/conf"
	"github.com/dukkea/pokeapi-go/internal/datastore"
	"github.com/dukkea/pokeapi-go/internal/logging"
	"github.com/dukkea/pokeapi-go/internal/observability"
	"github.com/dukkea/pokeapi-go/internal/pokeapi"
	"github.com/dukkea/pokeapi-go/internal/pokemon"
)

const shutdownTimeout = 10 * time.Second

// Command creates the serve command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Bootstrap the catalog and serve the proxy API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), settings)
		},
	}
}

func run(ctx context.Context, settings *conf.Settings) error {
	logging.Init(settings.LogLevel())

	store := datastore.New(settings)
	if err := store.Open(); err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error("Failed to close datastore", "error", err)
		}
	}()

	client, err := pokeapi.NewClient(pokeapi.Config{
		BaseURL:    settings.Upstream.BaseURL,
		Timeout:    settings.Upstream.Timeout,
		UserAgent:  settings.Upstream.UserAgent,
		MaxRetries: settings.Upstream.MaxRetries,
		RetryDelay: settings.Upstream.RetryDelay,
	})
	if err != nil {
		return fmt.Errorf("failed to create upstream client: %w", err)
	}
	defer client.Close()

	metrics, err := observability.NewMetrics()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	service := pokemon.NewService(store, client, settings, metrics.Pokemon)

	// The catalog is seeded before the listener starts so every served
	// request sees the full id space.
	logging.Info("Bootstrapping catalog", "total", settings.Upstream.TotalCount)
	if err := service.InitCatalog(ctx); err != nil {
		return fmt.Errorf("catalog bootstrap failed: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	controller := api.New(e, store, settings, service, metrics)
	defer controller.Shutdown()

	address := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	errChan := make(chan error, 1)
	go func() {
		logging.Info("Serving API", "address", address)
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logging.Info("Shutting down", "signal", sig.String())
	case <-ctx.Done():
		logging.Info("Shutting down", "reason", "context cancelled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
