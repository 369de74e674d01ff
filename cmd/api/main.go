package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "hotel_mapping/internal/adapters/http_server"
	"hotel_mapping/internal/adapters/observability"
	"hotel_mapping/internal/adapters/password"
	"hotel_mapping/internal/adapters/token"
	"hotel_mapping/internal/app"
	"hotel_mapping/internal/shared"
	"hotel_mapping/internal/storage"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// store
	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("store unavailable")
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn().Err(err).Msg("closing store")
		}
	}()

	// deps
	hasher, err := password.New(cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("password hasher")
	}
	issuer, err := token.New(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("token issuer")
	}
	accounts := app.NewAccountService(store, hasher, issuer)
	listings := app.NewListingService(store)
	search := app.NewSearchService(store)

	// http
	srv := server.New(cfg.CORSAllowedOrigins)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Accounts: accounts, Listings: listings, Search: search, Store: store})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("storage", cfg.StorageDriver).Msg("API listening")
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}
