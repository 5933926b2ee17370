// Command server runs the bookmart marketplace API.
//
// Configuration is layered: built-in defaults, a YAML config file
// (-config flag, BOOKMART_CONFIG, ./config.yaml, /etc/bookmart/config.yaml),
// and environment variable overrides:
//
//	BOOKMART_SECRET      - Token signing secret (required)
//	BOOKMART_PORT        - Listen port (default: 8080)
//	BOOKMART_TOKEN_TTL   - Token lifetime, e.g. "1h" (default: 1h)
//	BOOKMART_STORAGE     - Storage type: "memory" or "postgres" (default: "memory")
//	BOOKMART_DSN         - PostgreSQL connection string
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bookmart-dev/bookmart/pkg/auth"
	"github.com/bookmart-dev/bookmart/pkg/auth/password"
	"github.com/bookmart-dev/bookmart/pkg/auth/token"
	"github.com/bookmart-dev/bookmart/pkg/config"
	"github.com/bookmart-dev/bookmart/pkg/debug"
	"github.com/bookmart-dev/bookmart/pkg/service"
	"github.com/bookmart-dev/bookmart/pkg/storage"
	"github.com/bookmart-dev/bookmart/pkg/storage/memory"
	"github.com/bookmart-dev/bookmart/pkg/storage/postgres"
	transporthttp "github.com/bookmart-dev/bookmart/pkg/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	debug.Init(cfg.Observability.Debug, cfg.Observability.LogLevel)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create the store.
	var store storage.Store
	switch cfg.Storage.Type {
	case "postgres":
		store, err = postgres.New(ctx, postgres.Config{
			DSN:            cfg.Storage.Postgres.DSN,
			MaxConns:       cfg.Storage.Postgres.MaxConns,
			MigrateOnStart: cfg.Storage.Postgres.MigrateOnStart,
		})
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		slog.Info("storage enabled", "type", "postgres")
	default:
		store = memory.New()
		slog.Info("storage enabled", "type", "memory")
	}
	defer store.Close()

	// Assemble the auth layer.
	codec, err := token.New(token.Config{Secret: []byte(cfg.Auth.Secret)})
	if err != nil {
		return fmt.Errorf("creating token codec: %w", err)
	}
	hasher := password.New(cfg.Auth.BcryptCost)
	login, err := auth.NewCredentialAuthenticator(store, hasher)
	if err != nil {
		return fmt.Errorf("creating credential authenticator: %w", err)
	}
	guard := auth.NewGuard(auth.NewRequestAuthenticator(codec, store))

	// Assemble the services.
	customers := service.NewCustomerService(store, store, hasher)
	books := service.NewBookService(store, store)
	purchases := service.NewPurchaseService(store, store, store, nil)

	// Build the HTTP handler and server.
	api := transporthttp.NewAPI(customers, books, purchases, login, codec, cfg.Auth.TokenTTL, store)
	handler := transporthttp.NewHandler(api, guard, cfg.Observability, logger)
	srv := transporthttp.NewServer(handler, cfg.Server, logger)

	return srv.ListenAndServe(ctx)
}
