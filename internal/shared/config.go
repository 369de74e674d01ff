package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	env "github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"prod"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080" validate:"required"`
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9100"`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"mysql" validate:"oneof=mysql memory"`
	MySQLDSN      string `env:"MYSQL_DSN" envDefault:"root:root@tcp(localhost:3306)/hotel_mapping?parseTime=true&charset=utf8mb4&loc=UTC" validate:"required_if=StorageDriver mysql"`

	JWTSecret  string        `env:"JWT_SECRET" validate:"required,min=16"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10" validate:"min=4,max=31"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	FeedURL       string  `env:"FEED_URL" validate:"omitempty,url"`
	FeedAPIKey    string  `env:"FEED_API_KEY"`
	FeedRPS       float64 `env:"FEED_RPS" envDefault:"5" validate:"gt=0"`
	ImportWorkers int     `env:"IMPORT_WORKERS" envDefault:"8" validate:"min=1"`

	ImportOwnerEmail    string `env:"IMPORT_OWNER_EMAIL" envDefault:"importer@hotel-mapping.local"`
	ImportOwnerPassword string `env:"IMPORT_OWNER_PASSWORD"`
	ImportOwnerName     string `env:"IMPORT_OWNER_NAME" envDefault:"Feed Importer"`
}

// Load reads an optional .env file, then the process environment, and validates the result.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("unable to load .env file")
	}
	return FromEnv()
}

// FromEnv is Load without the .env lookup.
func FromEnv() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	if c.FeedURL != "" && c.FeedAPIKey == "" {
		log.Warn().Msg("FEED_API_KEY is empty")
	}
	return c, nil
}

func (c Config) Validate() error {
	if err := Validator().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.TokenTTL <= 0 {
		return errors.New("invalid config: TOKEN_TTL must be positive")
	}
	return nil
}

func (c Config) IsDev() bool { return c.AppEnv == "dev" || c.AppEnv == "development" }
