// Package storage selects and opens the configured repository backend.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotel_mapping/internal/domain"
	"hotel_mapping/internal/shared"
	"hotel_mapping/internal/storage/memory"
	mysqlrepo "hotel_mapping/internal/storage/mysql"
)

// Store is everything the services and the health check need from a backend.
type Store interface {
	domain.UserRepository
	domain.HotelRepository
	Ping(ctx context.Context) error
}

// Open connects to the backend named by cfg.StorageDriver. An unreachable MySQL is an error;
// callers treat it as fatal. The returned close func is never nil.
func Open(ctx context.Context, cfg shared.Config) (Store, func() error, error) {
	switch cfg.StorageDriver {
	case "memory":
		log.Warn().Msg("using in-memory storage; data is lost on exit")
		s := memory.New()
		return s, s.Close, nil

	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, func() error { return nil }, fmt.Errorf("sql.Open: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, func() error { return nil }, fmt.Errorf("db ping: %w", err)
		}
		log.Info().Msg("database connection ok")

		if err := mysqlrepo.Migrate(db); err != nil {
			_ = db.Close()
			return nil, func() error { return nil }, err
		}
		log.Info().Msg("migrations applied")
		return mysqlrepo.New(db), db.Close, nil

	default:
		return nil, func() error { return nil }, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
