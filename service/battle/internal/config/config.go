package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Config contiene le impostazioni runtime per battle-svc.
type Config struct {
	GRPCAddr    string `env:"GRPC_ADDR" envDefault:":50061" validate:"required"`
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9091"`
	DBDSN       string `env:"DB_DSN"`

	DBHost     string `env:"DB_HOST"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"require"`

	// Redis e NATS sono opzionali: se vuoti il guard e gli eventi sono disattivati.
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0" validate:"gte=0"`
	BattleLockTTL time.Duration `env:"BATTLE_LOCK_TTL" envDefault:"2m" validate:"gt=0"`
	NATSURL       string        `env:"NATS_URL"`

	RandomDeckSize int    `env:"RANDOM_DECK_SIZE" envDefault:"10" validate:"gte=1,lte=100"`
	CatalogPath    string `env:"CATALOG_PATH"`
}

// Load legge le variabili d'ambiente con default minimi e valida il risultato.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBDSN == "" {
		cfg.DBDSN = cfg.buildDSN()
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c Config) buildDSN() string {
	if c.DBHost == "" || c.DBUser == "" || c.DBName == "" {
		return ""
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}
