package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"hotel_mapping/internal/adapters/feed"
	"hotel_mapping/internal/adapters/observability"
	"hotel_mapping/internal/adapters/password"
	"hotel_mapping/internal/adapters/token"
	"hotel_mapping/internal/app"
	"hotel_mapping/internal/domain"
	"hotel_mapping/internal/shared"
	"hotel_mapping/internal/storage"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source := "sample"
	if cfg.FeedURL != "" {
		source = cfg.FeedURL
	}
	log.Info().
		Str("feed", source).
		Int("workers", cfg.ImportWorkers).
		Str("owner", cfg.ImportOwnerEmail).
		Msg("importer starting")

	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store unavailable")
	}
	defer closeStore()

	hasher, err := password.New(cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("password hasher")
	}
	issuer, err := token.New(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("token issuer")
	}
	accounts := app.NewAccountService(store, hasher, issuer)

	owner, err := ensureOwner(ctx, accounts, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("import owner account")
	}

	var src domain.ListingFeed = feed.Sample{}
	if cfg.FeedURL != "" {
		client, err := feed.New(cfg.FeedURL, cfg.FeedAPIKey, cfg.FeedRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize feed client")
		}
		src = client
	}

	imp := app.NewImportService(src, app.NewListingService(store), cfg.ImportWorkers)
	rep, err := imp.Import(ctx, owner.ID)
	log.Info().
		Int("fetched", rep.Fetched).
		Int("created", rep.Created).
		Int("skipped", rep.Skipped).
		Int("failed", rep.Failures).
		Msg("import completed")
	if err != nil {
		log.Error().Err(err).Msg("import finished with errors")
		closeStore()
		os.Exit(1)
	}
}

// ensureOwner registers the import account, or logs into it when it already exists.
func ensureOwner(ctx context.Context, accounts *app.AccountService, cfg shared.Config) (domain.User, error) {
	if cfg.ImportOwnerPassword == "" {
		return domain.User{}, errors.New("IMPORT_OWNER_PASSWORD is required")
	}
	u, err := accounts.Register(ctx, cfg.ImportOwnerEmail, cfg.ImportOwnerPassword, cfg.ImportOwnerName)
	if errors.Is(err, domain.ErrDuplicateEmail) {
		return accounts.Authenticate(ctx, cfg.ImportOwnerEmail, cfg.ImportOwnerPassword)
	}
	if err == nil {
		log.Info().Str("id", u.ID).Msg("import owner registered")
	}
	return u, err
}
